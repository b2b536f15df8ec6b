package firstgov

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"govsearch-backend/lib/fedsearch"
	"govsearch-backend/lib/telemetry"
)

// resultsPage renders a structural-markup page with two hits. nextToken
// being empty renders a terminal page without the pager controls.
func resultsPage(pageNo int, banner, nextToken string) string {
	body := `<html><body>
<table><tr><td>` + banner + `</td></tr></table>
<!-- Begin Results Table -->
<table>`
	for i := 1; i <= 2; i++ {
		body += fmt.Sprintf(`
<tr><td>%d.</td>
<td><a href="http://www.example.gov/p%d-%d">Result %d-%d</a></td>
<td>Description %d-%d.</td></tr>`,
			i, pageNo, i, pageNo, i, pageNo, i)
	}
	body += `
</table>`
	if nextToken != "" {
		body += `
<form action="/search" method="get">
<input type="hidden" name="fr" value="` + nextToken + `">
<input type="hidden" name="nr" value="20">
<input type="image" name="act.next" src="/images/next.gif">
</form>`
	}
	body += `
</body></html>`
	return body
}

func paginatedServer(t *testing.T, fetches *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		require.Equal(t, "commerce", r.URL.Query().Get("mw0"))

		switch r.URL.Query().Get("fr") {
		case "":
			fmt.Fprint(w, resultsPage(1, "Your search returned more than 100 relevant results.", "20"))
		case "20":
			// later pages repeat a banner; only the first observation counts
			fmt.Fprint(w, resultsPage(2, "Your search returned 999 results.", "40"))
		case "40":
			fmt.Fprint(w, resultsPage(3, "Your search returned 999 results.", ""))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("fr"))
			http.NotFound(w, r)
		}
	}))
}

func TestSessionPaginatesUntilExhausted(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firstgov")
	defer cleanup()
	ctx := context.Background()

	var fetches atomic.Int32
	srv := paginatedServer(t, &fetches)
	defer srv.Close()

	var recordHits, countHits int
	var decisions []bool
	client, err := NewClient(ClientOptions{
		BaseUrl:   srv.URL + "/search",
		PageDelay: time.Millisecond,
		Hooks: Hooks{
			OnRecord:     func(fedsearch.Record) { recordHits++ },
			OnCount:      func(int) { countHits++ },
			OnPagination: func(_ string, more bool) { decisions = append(decisions, more) },
		},
	})
	require.NoError(t, err)

	session := client.StartSearch("commerce", nil)

	require.Equal(t, 2, session.FetchNextPage(ctx))
	require.Equal(t, 101, session.ApproximateResultCount())
	require.False(t, session.Done())

	require.Equal(t, 2, session.FetchNextPage(ctx))
	// the first page's observation stays authoritative
	require.Equal(t, 101, session.ApproximateResultCount())

	require.Equal(t, 2, session.FetchNextPage(ctx))
	require.True(t, session.Done())

	// a finished session produces nothing and never refetches
	before := fetches.Load()
	require.Zero(t, session.FetchNextPage(ctx))
	require.Equal(t, before, fetches.Load())

	require.Len(t, session.Records(), 6)
	require.Equal(t, "http://www.example.gov/p1-1", session.Records()[0].URL)
	require.Equal(t, "Result 3-2", session.Records()[5].Title)

	require.Equal(t, 6, recordHits)
	require.Equal(t, 1, countHits)
	require.Equal(t, []bool{true, true, false}, decisions)
}

func TestCursorDrainsAllPages(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firstgov")
	defer cleanup()
	ctx := context.Background()

	var fetches atomic.Int32
	srv := paginatedServer(t, &fetches)
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL + "/search", PageDelay: time.Millisecond})
	require.NoError(t, err)

	cursor, err := client.Search(ctx, "commerce", nil)
	require.NoError(t, err)

	var titles []string
	for {
		rec, ok := cursor.Next(ctx)
		if !ok {
			break
		}
		titles = append(titles, rec.Title)
	}
	require.Len(t, titles, 6)
	require.Equal(t, int32(3), fetches.Load())

	// exhausted cursors stay exhausted
	_, ok := cursor.Next(ctx)
	require.False(t, ok)
}

func TestEmptyResultSession(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firstgov")
	defer cleanup()
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<table><tr><td>Your search did not return any documents.</td></tr></table>
<!-- Begin Results Table -->
<table></table>
</body></html>`)
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL + "/search", PageDelay: time.Millisecond})
	require.NoError(t, err)

	session := client.StartSearch("xyzzy", nil)
	require.Zero(t, session.FetchNextPage(ctx))
	require.Zero(t, session.ApproximateResultCount())
	require.True(t, session.Done())
	require.Empty(t, session.Records())
}

func TestTransportFailureEndsSession(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firstgov")
	defer cleanup()
	ctx := context.Background()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		http.Error(w, "portal maintenance", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL + "/search", PageDelay: time.Millisecond})
	require.NoError(t, err)

	session := client.StartSearch("commerce", nil)
	require.Zero(t, session.FetchNextPage(ctx))
	require.True(t, session.Done())

	// no retry once the transport has failed
	require.Zero(t, session.FetchNextPage(ctx))
	require.Equal(t, int32(1), fetches.Load())
}

func TestLegacyPageEndToEnd(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/firstgov")
	defer cleanup()
	ctx := context.Background()

	// the fixture carries the offset token; add the next button so the
	// session has both pagination signals
	firstPage := strings.Replace(legacyPage, "</form>",
		`<input type="image" name="act.next" src="/images/next.gif">
</form>`, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fr") == "10" {
			// terminal legacy page: no pager field, no next control
			fmt.Fprint(w, "<html><body>\n<p>nothing further</p>\n</body></html>")
			return
		}
		fmt.Fprint(w, firstPage)
	}))
	defer srv.Close()

	client, err := NewClient(ClientOptions{BaseUrl: srv.URL + "/search", PageDelay: time.Millisecond})
	require.NoError(t, err)

	session := client.StartSearch("commerce", nil)
	require.Equal(t, 2, session.FetchNextPage(ctx))
	require.Equal(t, 2204, session.ApproximateResultCount())
	require.False(t, session.Done())

	require.Zero(t, session.FetchNextPage(ctx))
	require.True(t, session.Done())
}
