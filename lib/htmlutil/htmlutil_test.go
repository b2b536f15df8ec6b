package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustRoot(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc.Get(0)
}

func TestGetText(t *testing.T) {
	root := mustRoot(t, `<td>The <b>quick</b> <i>brown</i> fox</td>`)
	cells := Descendants(root, "td")
	require.Len(t, cells, 1)
	require.Equal(t, "The quick brown fox", GetText(cells[0]))
}

func TestCellText(t *testing.T) {
	root := mustRoot(t, "<td>  spread \n <b>out</b> </td>")
	cells := Descendants(root, "td")
	require.Len(t, cells, 1)
	require.Equal(t, "spread out", CellText(cells[0]))
}

func TestFindComment(t *testing.T) {
	root := mustRoot(t, `<body><table id="nav"></table><!-- Begin Results Table --><table id="results"></table></body>`)

	comment := FindComment(root, "Begin Results Table")
	require.NotNil(t, comment)

	table := FirstElementAfter(root, comment, "table")
	require.NotNil(t, table)
	require.Equal(t, "results", Attr(table, "id"))
}

func TestFindCommentMissing(t *testing.T) {
	root := mustRoot(t, `<body><table></table></body>`)
	require.Nil(t, FindComment(root, "Begin Results Table"))
}

func TestFindAnchor(t *testing.T) {
	root := mustRoot(t, `<td><a href="http://red.example/go?url=http%3A%2F%2Fwww.commerce.gov%2F&src=web">U.S. <b>Commerce</b>  Dept.</a></td>`)
	cells := Descendants(root, "td")
	require.Len(t, cells, 1)

	anchor, ok := FindAnchor(cells[0])
	require.True(t, ok)
	require.Equal(t, "http://www.commerce.gov/", anchor.Href)
	require.Equal(t, "U.S. Commerce Dept.", anchor.Name)
}

func TestFindAnchorMissing(t *testing.T) {
	root := mustRoot(t, `<td>no link here</td>`)
	cells := Descendants(root, "td")
	require.Len(t, cells, 1)

	_, ok := FindAnchor(cells[0])
	require.False(t, ok)
}

func TestUnwrapRedirect(t *testing.T) {
	testCases := []struct {
		href     string
		expected string
	}{
		{"http://red.example/go?url=http%3A%2F%2Fa.gov%2F", "http://a.gov/"},
		{"http://a.gov/page", "http://a.gov/page"},
		{"/relative?url=http%3A%2F%2Fb.gov%2F&z=1", "http://b.gov/"},
		{"http://a.gov/?url=", "http://a.gov/?url="},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, UnwrapRedirect(test.href), test.href)
	}
}
