package api

import (
	"errors"
	"net/http"

	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/http/response"
)

// maxImportSize bounds uploaded bookmark files. Browser exports with
// tens of thousands of entries stay well under this.
const maxImportSize = 32 << 20 // 32 MiB

// handleImportHTML ingests a Netscape bookmark export. This stays a
// plain chi handler because the body is a raw HTML file, not JSON.
func (s *Server) handleImportHTML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body := http.MaxBytesReader(w, r.Body, maxImportSize)
	result, err := s.services.Import.Import(ctx, body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "bookmark file too large", s.logger)
			return
		}

		var domainErr *apperrors.Error
		if errors.As(err, &domainErr) {
			response.Error(w, domainErr.HTTPStatus(), domainErr.Message, s.logger)
			return
		}
		s.logger.Error("import failed", "error", err)
		response.InternalError(w, "Failed to import bookmark file", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleExportHTML streams the current tree as a Netscape bookmark file.
func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.html"`)

	if err := s.services.Import.Export(ctx, w); err != nil {
		// Headers may already be gone; log rather than double-write.
		s.logger.Error("export failed", "error", err)
	}
}
