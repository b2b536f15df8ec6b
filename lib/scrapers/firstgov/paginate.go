package firstgov

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var offsetParamRegex = regexp.MustCompile(`([?&])fr=[^&]*`)

// nextPageURL decides whether the page offers another batch of results
// and, if so, rewrites prevUrl into the request for it. Both pagination
// signals are required: the next-page control must be present AND an
// offset token must parse. One without the other is treated as
// completion rather than risking a malformed request or a loop.
func nextPageURL(doc *goquery.Document, prevUrl string) (string, bool) {
	if !hasNextControl(doc) {
		return "", false
	}
	token, ok := offsetToken(doc)
	if !ok {
		return "", false
	}

	next := prevUrl
	if offsetParamRegex.MatchString(next) {
		next = offsetParamRegex.ReplaceAllStringFunc(next, func(m string) string {
			return m[:1] + paramOffset + "=" + token
		})
	} else {
		sep := "?"
		if strings.Contains(next, "?") {
			sep = "&"
		}
		next += sep + paramOffset + "=" + token
	}

	if !strings.Contains(next, paramNextX+"=") {
		next += "&" + paramNextX + "=1"
	}
	if !strings.Contains(next, paramNextY+"=") {
		next += "&" + paramNextY + "=1"
	}
	return next, true
}

// hasNextControl looks for the portal's "go to next page" control: an
// image input named for the next action, or the coordinate pair the
// browser submits for one.
func hasNextControl(doc *goquery.Document) bool {
	found := false
	doc.Find("input").EachWithBreak(func(_ int, input *goquery.Selection) bool {
		name, _ := input.Attr("name")
		kind, _ := input.Attr("type")
		switch {
		case name == "act.next" && strings.EqualFold(kind, "image"):
			found = true
		case name == paramNextX || name == paramNextY:
			found = true
		}
		return !found
	})
	return found
}

// offsetToken pulls the next-page offset the portal echoes back in a
// hidden field. The lookup is scoped to the form that also carries the
// per-page count, so an unrelated form with its own offset field cannot
// shadow the pager; legacy pages with a single bare field fall through
// to a document-wide search.
func offsetToken(doc *goquery.Document) (string, bool) {
	var token string
	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		if form.Find(`input[name="` + paramPerPage + `"]`).Length() == 0 {
			return true
		}
		offset := form.Find(`input[name="` + paramOffset + `"]`)
		if offset.Length() == 0 {
			return true
		}
		token = offset.AttrOr("value", "")
		return token == ""
	})
	if token != "" {
		return token, true
	}

	token = doc.Find(`input[name="` + paramOffset + `"]`).AttrOr("value", "")
	return token, token != ""
}
