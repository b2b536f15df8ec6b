// Package htmlutil contains the document-tree helpers the scrapers share:
// text extraction with descendant tags stripped, comment-marker location,
// and anchor handling including redirect-style link unwrapping.
package htmlutil

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"govsearch-backend/lib/textutil"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CellText is GetText normalized for table-cell comparison: descendant
// markup stripped, whitespace and non-breaking spaces collapsed.
func CellText(node *html.Node) string {
	return textutil.CollapseWhitespace(GetText(node))
}

func Attr(node *html.Node, key string) string {
	if node == nil {
		return ""
	}
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// FindComment returns the first comment node in document order whose text
// contains marker, or nil.
func FindComment(root *html.Node, marker string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.CommentNode && strings.Contains(n.Data, marker) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FirstElementAfter returns the first element with the given tag that
// starts after `after` in document order, or nil.
func FirstElementAfter(root, after *html.Node, tag string) *html.Node {
	var found *html.Node
	seen := false
	walk(root, func(n *html.Node) bool {
		if n == after {
			seen = true
			return true
		}
		if seen && n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// Descendants collects every element with the given tag under root, in
// document order, root excluded.
func Descendants(root *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}

// walk runs fn over the tree in document order, stopping when fn returns
// false.
func walk(node *html.Node, fn func(*html.Node) bool) bool {
	if node == nil {
		return true
	}
	if !fn(node) {
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

type Anchor struct {
	Name string
	Href string
}

// FindAnchor returns the first <a> under node as a cleaned Anchor, with
// redirect-style hrefs unwrapped. ok is false when node holds no anchor
// with an href.
func FindAnchor(node *html.Node) (Anchor, bool) {
	anchors := Descendants(node, "a")
	if node != nil && node.Type == html.ElementNode && node.Data == "a" {
		anchors = append([]*html.Node{node}, anchors...)
	}
	for _, a := range anchors {
		href := Attr(a, "href")
		if href == "" {
			continue
		}
		return Anchor{
			Name: textutil.CollapseWhitespace(GetText(a)),
			Href: UnwrapRedirect(href),
		}, true
	}
	return Anchor{}, false
}

// UnwrapRedirect extracts the true destination from a redirect-style link
// that embeds it in a `url=` query parameter. Anything else is returned
// unchanged.
func UnwrapRedirect(href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := link.Query().Get("url"); target != "" {
		return target
	}
	return href
}
