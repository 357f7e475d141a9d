package classifier

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
)

const systemPrompt = "You are a bookmark organization assistant. Assign each bookmark " +
	"to the best-fitting folder. Prefer the existing folders provided; invent a new " +
	"folder name only when none fits. Respond only with valid JSON in the exact format " +
	"requested, with no explanatory text outside the JSON."

// Config holds the OpenAI-backed classifier settings.
type Config struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
}

// OpenAIClassifier implements Classifier against the OpenAI chat
// completions API, rate limited on the client side.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAI creates a classifier backed by the OpenAI API.
func NewOpenAI(cfg Config, logger *slog.Logger) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.Validationf("classifier API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &OpenAIClassifier{
		client:  openai.NewClient(cfg.APIKey),
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute)/60, 1),
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// ClassifyBatch sends one chat completion request for the whole batch
// and parses the per-bookmark verdicts out of the response.
func (c *OpenAIClassifier) ClassifyBatch(ctx context.Context, bookmarks []*domain.BookmarkNode, folderNames []string) ([]domain.Suggestion, error) {
	if len(bookmarks) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(bookmarks, folderNames)},
		},
		MaxTokens:   2000,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, apperrors.Upstreamf("classification request failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.Upstreamf("classification response contained no choices")
	}

	suggestions, parseErrs := parseSuggestions(resp.Choices[0].Message.Content, len(bookmarks), folderNames)
	if parseErrs > 0 && c.logger != nil {
		c.logger.Warn("classifier returned malformed entries",
			"malformed", parseErrs,
			"batch_size", len(bookmarks))
	}
	return suggestions, nil
}

// buildPrompt lists the candidate folders and the numbered bookmarks,
// then pins down the response shape.
func buildPrompt(bookmarks []*domain.BookmarkNode, folderNames []string) string {
	var b strings.Builder

	b.WriteString("Existing folders: ")
	if len(folderNames) == 0 {
		b.WriteString("none")
	} else {
		b.WriteString(strings.Join(folderNames, ", "))
	}
	b.WriteString("\n\nBookmarks to classify:\n")

	for i, bm := range bookmarks {
		title := bm.Title
		if len(title) > 200 {
			title = title[:200]
		}
		fmt.Fprintf(&b, "%d. Title: %q URL: %s\n", i, title, bm.URL)
	}

	b.WriteString(`
Respond with a JSON array, one object per bookmark, in this exact shape:
[{"index": 0, "category": "Folder Name", "is_new_category": false}]

Rules:
- "index" matches the bookmark number above.
- "category" is an existing folder name when one fits, otherwise a new 1-3 word name.
- "is_new_category" is true only when the category is not in the existing folder list.`)

	return b.String()
}

// verdict is the wire shape of one classifier response entry.
type verdict struct {
	Index         int    `json:"index"`
	Category      string `json:"category"`
	IsNewCategory bool   `json:"is_new_category"`
}

// parseSuggestions decodes the model response into index-aligned
// suggestions. Entries that are missing, out of range, or empty leave
// a zero suggestion at their slot; the count of such defects is
// returned alongside. A response that fails to decode entirely yields
// all-zero suggestions rather than an error, so one garbled reply
// never aborts a run.
func parseSuggestions(content string, count int, folderNames []string) ([]domain.Suggestion, int) {
	suggestions := make([]domain.Suggestion, count)

	raw := stripFences(content)
	var verdicts []verdict
	if err := json.Unmarshal([]byte(raw), &verdicts); err != nil {
		return suggestions, count
	}

	known := make(map[string]string, len(folderNames))
	for _, name := range folderNames {
		known[strings.ToLower(name)] = name
	}

	seen := make(map[int]bool, count)
	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= count || seen[v.Index] {
			continue
		}
		category := strings.TrimSpace(v.Category)
		if category == "" {
			continue
		}
		seen[v.Index] = true

		// Canonicalize to the existing folder's spelling when the model
		// matched one case-insensitively, and trust the list over the
		// model's own is_new_category flag.
		if existing, ok := known[strings.ToLower(category)]; ok {
			suggestions[v.Index] = domain.Suggestion{Category: existing, IsNewCategory: false}
		} else {
			suggestions[v.Index] = domain.Suggestion{Category: category, IsNewCategory: true}
		}
	}

	return suggestions, count - len(seen)
}

// stripFences removes a markdown code fence wrapper if the model added
// one despite instructions.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
