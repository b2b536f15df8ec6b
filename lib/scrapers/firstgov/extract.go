package firstgov

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"govsearch-backend/lib/fedsearch"
)

// page is one fetched result page in both the forms the extraction
// strategies need: the raw body for the line-oriented legacy markup and
// the parsed tree for the structural markup.
type page struct {
	url  string
	body string
	doc  *goquery.Document
}

type extraction struct {
	records  []fedsearch.Record
	count    int
	hasCount bool
}

// extractor parses one page into records and, best effort, the
// approximate total the portal reports on its first page. Extraction
// never fails: unrecognized markup yields fewer records, not an error.
type extractor interface {
	extract(ctx context.Context, pg *page) extraction
}

// resultsTableMarker is the structural comment the portal's current
// markup places immediately before the results table.
const resultsTableMarker = "Begin Results Table"

// chooseExtractor selects the parsing strategy from the markup shape.
func chooseExtractor(pg *page) extractor {
	if strings.Contains(pg.body, resultsTableMarker) {
		return tableExtractor{}
	}
	return legacyExtractor{}
}
