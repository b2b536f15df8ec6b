package firstgov

import (
	"net/url"
	"strconv"
	"strings"

	"govsearch-backend/lib/fedsearch"
)

// Wire-level query parameter names the portal understands.
const (
	paramQuery     = "mw0"
	paramMatchMode = "mt" // all | any | phrase
	paramSign      = "ms" // must | should | mustnot
	paramPerPage   = "nr" // 1-100
	paramFormat    = "de" // detailed | brief
	paramOffset    = "fr"
	paramNextX     = "act.next.x"
	paramNextY     = "act.next.y"
	paramAction    = "act.search"
)

// OptionBeginAt is a convenience option: a 1-based result index to start
// retrieval at. It is translated into the portal's offset parameters and
// never forwarded verbatim.
const OptionBeginAt = "begin_at"

func defaultOptions() fedsearch.Options {
	return fedsearch.Options{
		paramMatchMode: "all",
		paramSign:      "must",
		paramPerPage:   "20",
		paramFormat:    "detailed",
		// the portal ignores queries missing its form action marker
		paramAction: "Search",
	}
}

// firstPageURL merges the client defaults with caller options
// (last-write-wins) and serializes them, sorted by key, onto the base
// endpoint. Pure data transformation: invalid counts or offsets are
// forwarded uninterpreted and left to the portal to reject.
func (c *Client) firstPageURL(query string, opts fedsearch.Options) string {
	merged := c.defaults.Clone()
	for k, v := range opts {
		merged[k] = v
	}
	merged[paramQuery] = query

	if beginAt, ok := merged[OptionBeginAt]; ok {
		delete(merged, OptionBeginAt)
		if b, err := strconv.Atoi(strings.TrimSpace(beginAt)); err == nil {
			if b < 1 {
				b = 1
			}
			perPage, _ := strconv.Atoi(merged[paramPerPage])
			// the portal adds one page worth of results to fr when the
			// next control is activated, so back the offset off by a
			// page and force the activation fields
			merged[paramOffset] = strconv.Itoa(b - 1 - perPage)
			merged[paramNextX] = "1"
			merged[paramNextY] = "1"
		}
	}

	values := url.Values{}
	for k, v := range merged {
		values.Set(k, v)
	}
	return c.BaseUrl.String() + "?" + values.Encode()
}
