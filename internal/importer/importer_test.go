package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

const sampleExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com/top" ADD_DATE="1700000000">Top level</A>
    <DT><H3 ADD_DATE="1700000100">Programming</H3>
    <DL><p>
        <DT><A HREF="https://go.dev">The Go Programming Language</A>
        <DT><H3>Blogs</H3>
        <DL><p>
            <DT><A HREF="https://go.dev/blog">Go Blog</A>
        </DL><p>
    </DL><p>
    <DT><A HREF="https://example.com/last">Last</A>
</DL><p>
`

func TestParse(t *testing.T) {
	nodes, err := Parse(strings.NewReader(sampleExport))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, "Top level", nodes[0].Title)
	assert.Equal(t, "https://example.com/top", nodes[0].URL)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), nodes[0].CreatedAt)

	programming := nodes[1]
	assert.Equal(t, "Programming", programming.Title)
	assert.True(t, programming.IsFolder())
	require.Len(t, programming.Children, 2)
	assert.Equal(t, "The Go Programming Language", programming.Children[0].Title)

	blogs := programming.Children[1]
	assert.True(t, blogs.IsFolder())
	require.Len(t, blogs.Children, 1)
	assert.Equal(t, "https://go.dev/blog", blogs.Children[0].URL)

	assert.Equal(t, "Last", nodes[2].Title)
	assert.Equal(t, 4, Count(nodes))
}

func TestParse_SkipsAnchorsWithoutHref(t *testing.T) {
	input := `<DL><p><DT><A>no href</A><DT><A HREF="https://example.com">ok</A></DL><p>`

	nodes, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "ok", nodes[0].Title)
}

func TestParse_UntitledBookmarkFallsBackToURL(t *testing.T) {
	input := `<DL><p><DT><A HREF="https://example.com"></A></DL><p>`

	nodes, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "https://example.com", nodes[0].Title)
}

func TestParse_EmptyFolder(t *testing.T) {
	input := `<DL><p><DT><H3>Empty</H3><DL><p></DL><p></DL><p>`

	nodes, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].IsFolder())
	assert.Empty(t, nodes[0].Children)
}

func TestExportRoundTrip(t *testing.T) {
	roots := []*domain.BookmarkNode{
		{
			Title: "Programming",
			Children: []*domain.BookmarkNode{
				{Title: "Go & friends", URL: "https://go.dev", CreatedAt: time.Unix(1700000000, 0).UTC()},
			},
		},
		{Title: "Loose", URL: "https://example.com/loose"},
	}

	var b strings.Builder
	require.NoError(t, Export(&b, roots))

	parsed, err := Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Programming", parsed[0].Title)
	require.Len(t, parsed[0].Children, 1)
	assert.Equal(t, "Go & friends", parsed[0].Children[0].Title)
	assert.Equal(t, "https://go.dev", parsed[0].Children[0].URL)
	assert.Equal(t, "https://example.com/loose", parsed[1].URL)
}
