package firstgov

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"

	"govsearch-backend/lib/fedsearch"
	"govsearch-backend/lib/htmlutil"
	"govsearch-backend/lib/textutil"
)

// legacyExtractor handles the portal's original line-oriented markup: a
// hidden pager field, a "Returned: N matches" banner, then one table row
// per hit spread over several lines. It runs a small state machine over
// the raw body lines because the legacy pages were keyed on physical
// line structure, not on well-formed nesting.
type legacyExtractor struct{}

type legacyState int

const (
	legacyHeader legacyState = iota
	legacyCountPending
	legacyMatches
	legacyURLPending
	legacyScorePending
	legacyDescriptionPending
)

var (
	legacyOffsetNameRe = regexp.MustCompile(`name="?fr"?`)
	legacyValueRe      = regexp.MustCompile(`value="?(\d+)"?`)
	legacyCountRe      = regexp.MustCompile(`Returned:\s*([\d,]+)\s+matches`)
	legacyRowStartRe   = regexp.MustCompile(`<tr[ >]`)
	legacyHitRe        = regexp.MustCompile(`<td[^>]*><a\s+href="([^"]+)"[^>]*>(.*?)</a>`)
	legacyScoreRe      = regexp.MustCompile(`<td[^>]*>\s*(\d{1,3})%`)
	legacySizeDateRe   = regexp.MustCompile(`<td[^>]*>\s*([\d.]+)(k?)\s*-\s*(\d{4}/\d{1,2}/\d{1,2})`)
	legacyDescRe       = regexp.MustCompile(`<td[^>]*>(.*?)</td>`)
)

func (legacyExtractor) extract(ctx context.Context, pg *page) extraction {
	var out extraction

	state := legacyHeader
	offsetNameSeen := false
	// at most one in-progress hit, held across lines
	var cur *fedsearch.Record

	for _, line := range strings.Split(pg.body, "\n") {
		switch state {
		case legacyHeader:
			// the hidden pager field may be split across two tag
			// fragments, with the name on one line and the value on the
			// next
			if legacyOffsetNameRe.MatchString(line) {
				offsetNameSeen = true
			}
			if offsetNameSeen && legacyValueRe.MatchString(line) {
				state = legacyCountPending
			}
		case legacyCountPending:
			if m := legacyCountRe.FindStringSubmatch(line); m != nil {
				if n, ok := textutil.ParseCommaInt(m[1]); ok {
					out.count, out.hasCount = n, true
				}
				state = legacyMatches
			}
		case legacyMatches:
			if hit := startLegacyHit(line); hit != nil {
				cur = hit
				state = legacyScorePending
				break
			}
			if legacyRowStartRe.MatchString(line) {
				state = legacyURLPending
			}
		case legacyURLPending:
			if hit := startLegacyHit(line); hit != nil {
				cur = hit
				state = legacyScorePending
			}
		case legacyScorePending:
			if m := legacyScoreRe.FindStringSubmatch(line); m != nil {
				if score, err := strconv.Atoi(m[1]); err == nil && score <= 100 {
					cur.Score = score
				}
				state = legacyDescriptionPending
				break
			}
			// brief rows jump straight to the trailing size/date cell
			if finishLegacyHit(line, &cur, &out) {
				state = legacyMatches
			}
		case legacyDescriptionPending:
			if finishLegacyHit(line, &cur, &out) {
				state = legacyMatches
				break
			}
			if m := legacyDescRe.FindStringSubmatch(line); m != nil && cur.Description == "" {
				cur.Description = cleanLegacyText(m[1])
			}
		}
	}

	return out
}

// startLegacyHit recognizes the row cell holding the hit's anchor and
// begins a record from it. Redirect-style hrefs are unwrapped here so a
// raw redirect URL never reaches a finalized record.
func startLegacyHit(line string) *fedsearch.Record {
	m := legacyHitRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	title := cleanLegacyText(m[2])
	if title == "" {
		return nil
	}
	return &fedsearch.Record{
		URL:   htmlutil.UnwrapRedirect(html.UnescapeString(m[1])),
		Title: title,
		Score: fedsearch.ScoreUnknown,
		Size:  fedsearch.SizeUnknown,
	}
}

// finishLegacyHit matches the trailing size/date cell, which finalizes
// the in-progress record.
func finishLegacyHit(line string, cur **fedsearch.Record, out *extraction) bool {
	if *cur == nil {
		return false
	}
	m := legacySizeDateRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	if size, err := strconv.ParseFloat(m[1], 64); err == nil {
		if m[2] == "k" {
			size *= 1024
		}
		(*cur).Size = int64(size)
	}
	(*cur).Date = m[3]

	out.records = append(out.records, **cur)
	*cur = nil
	return true
}

func cleanLegacyText(fragment string) string {
	return textutil.CollapseWhitespace(html.UnescapeString(textutil.StripTags(fragment)))
}
