// Package importer parses the Netscape bookmark file format that every
// major browser exports. The format is ancient tag soup (unclosed <DT>
// and <P> elements), so parsing leans on the html package's
// error-tolerant tokenizer rather than a strict DOM.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// ParsedNode is one entry from an import file. Ids are not assigned
// here; the store mints them when the import is applied.
type ParsedNode struct {
	Title     string
	URL       string // empty for folders
	CreatedAt time.Time
	Children  []*ParsedNode
}

// IsFolder reports whether the node is a folder.
func (n *ParsedNode) IsFolder() bool {
	return n.URL == ""
}

// Parse reads a Netscape bookmark file and returns its top-level
// entries. Folder nesting follows <DL> depth; <H3> names a folder and
// <A> is a bookmark. Entries without an href are skipped.
func Parse(r io.Reader) ([]*ParsedNode, error) {
	z := html.NewTokenizer(r)

	root := &ParsedNode{}
	stack := []*ParsedNode{root}
	var pendingFolder *ParsedNode

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return root.Children, nil
			}
			return nil, z.Err()

		case html.StartTagToken:
			token := z.Token()
			switch strings.ToLower(token.Data) {
			case "h3":
				folder := &ParsedNode{CreatedAt: addDate(token)}
				folder.Title = textUntilClose(z, "h3")
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, folder)
				pendingFolder = folder
			case "dl":
				// The first <dl> is the document body; nested ones open
				// the folder named by the preceding <h3>.
				if len(stack) == 1 && pendingFolder == nil {
					continue
				}
				if pendingFolder != nil {
					stack = append(stack, pendingFolder)
					pendingFolder = nil
				} else {
					stack = append(stack, stack[len(stack)-1])
				}
			case "a":
				bm := &ParsedNode{URL: attr(token, "href"), CreatedAt: addDate(token)}
				bm.Title = textUntilClose(z, "a")
				if bm.URL == "" {
					continue
				}
				if bm.Title == "" {
					bm.Title = bm.URL
				}
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, bm)
			}

		case html.EndTagToken:
			token := z.Token()
			if strings.ToLower(token.Data) == "dl" && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// Count returns the number of bookmarks in a parsed forest.
func Count(nodes []*ParsedNode) int {
	total := 0
	for _, n := range nodes {
		if n.IsFolder() {
			total += Count(n.Children)
		} else {
			total++
		}
	}
	return total
}

// textUntilClose collects text content until the named closing tag.
func textUntilClose(z *html.Tokenizer, name string) string {
	var b strings.Builder
	for {
		switch z.Next() {
		case html.TextToken:
			b.Write(z.Text())
		case html.EndTagToken:
			token := z.Token()
			if strings.ToLower(token.Data) == name {
				return strings.TrimSpace(b.String())
			}
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		}
	}
}

func attr(token html.Token, name string) string {
	for _, a := range token.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// addDate reads the ADD_DATE attribute, a unix timestamp in seconds.
func addDate(token html.Token) time.Time {
	raw := attr(token, "add_date")
	if raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// Export renders a tree back out in the Netscape format, so a cleaned
// and reorganized tree can round-trip into a browser.
func Export(w io.Writer, roots []*domain.BookmarkNode) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n<H1>Bookmarks</H1>\n<DL><p>\n")
	for _, root := range roots {
		exportNode(&b, root, 1)
	}
	b.WriteString("</DL><p>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func exportNode(b *strings.Builder, n *domain.BookmarkNode, depth int) {
	indent := strings.Repeat("    ", depth)
	if n.IsFolder() {
		b.WriteString(indent + "<DT><H3>" + html.EscapeString(n.Title) + "</H3>\n")
		b.WriteString(indent + "<DL><p>\n")
		for _, child := range n.Children {
			exportNode(b, child, depth+1)
		}
		b.WriteString(indent + "</DL><p>\n")
		return
	}
	b.WriteString(indent + "<DT><A HREF=\"" + html.EscapeString(n.URL) + "\"")
	if !n.CreatedAt.IsZero() {
		b.WriteString(" ADD_DATE=\"" + strconv.FormatInt(n.CreatedAt.Unix(), 10) + "\"")
	}
	b.WriteString(">" + html.EscapeString(n.Title) + "</A>\n")
}
