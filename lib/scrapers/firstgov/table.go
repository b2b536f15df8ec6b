package firstgov

import (
	"context"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"govsearch-backend/lib/fedsearch"
	"govsearch-backend/lib/htmlutil"
	"govsearch-backend/lib/textutil"
)

// tableExtractor handles the portal's current structural markup: a
// free-text total in one of the page's cells and a results table placed
// immediately after a marker comment, three cells per hit.
type tableExtractor struct{}

var (
	countMoreThanRe = regexp.MustCompile(`returned\s+more\s+than\s+([\d,]+)\s+relevant\s+results`)
	countExactRe    = regexp.MustCompile(`returned\s+([\d,]+)\s+results`)
	countNoneRe     = regexp.MustCompile(`did\s+not\s+return\s+any\s+documents`)
)

func (tableExtractor) extract(ctx context.Context, pg *page) extraction {
	var out extraction
	out.count, out.hasCount = findApproximateCount(pg.doc)

	root := pg.doc.Get(0)
	marker := htmlutil.FindComment(root, resultsTableMarker)
	if marker == nil {
		return out
	}
	table := htmlutil.FirstElementAfter(root, marker, "table")
	if table == nil {
		return out
	}

	// each hit spans three non-blank cells: ordinal, anchor,
	// description. the third cell finalizes the record and resets the
	// accumulator.
	var cellCount int
	var curUrl, curTitle string
	for _, cell := range htmlutil.Descendants(table, "td") {
		text := htmlutil.CellText(cell)
		anchor, hasAnchor := htmlutil.FindAnchor(cell)
		if textutil.IsBlank(text) && !hasAnchor {
			// whitespace or nbsp filler, not a result cell
			continue
		}

		switch cellCount % 3 {
		case 0:
			// ordinal cell, content unused
		case 1:
			if hasAnchor {
				curUrl = anchor.Href
				curTitle = anchor.Name
			}
		case 2:
			if curUrl != "" && curTitle != "" {
				out.records = append(out.records, fedsearch.Record{
					URL:         curUrl,
					Title:       curTitle,
					Description: text,
					Score:       fedsearch.ScoreUnknown,
					Size:        fedsearch.SizeUnknown,
				})
			}
			curUrl, curTitle = "", ""
		}
		cellCount++
	}

	return out
}

// findApproximateCount scans the page's cells for the portal's total
// phrasing. "more than N" is reported as N+1, a long-standing portal
// convention kept as-is.
func findApproximateCount(doc *goquery.Document) (int, bool) {
	count, ok := 0, false
	doc.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		text := textutil.CollapseWhitespace(cell.Text())
		if countNoneRe.MatchString(text) {
			count, ok = 0, true
			return false
		}
		if m := countMoreThanRe.FindStringSubmatch(text); m != nil {
			if n, good := textutil.ParseCommaInt(m[1]); good {
				count, ok = n+1, true
			}
			return false
		}
		if m := countExactRe.FindStringSubmatch(text); m != nil {
			if n, good := textutil.ParseCommaInt(m[1]); good {
				count, ok = n, true
			}
			return false
		}
		return true
	})
	return count, ok
}
