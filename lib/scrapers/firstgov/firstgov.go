// Package firstgov implements the FirstGov portal backend for the
// federated search framework. It issues paginated queries against the
// portal's search endpoint and extracts normalized records from the two
// result-page layouts the portal has used over the years.
package firstgov

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"govsearch-backend/lib/fedsearch"
	"govsearch-backend/lib/telemetry"
)

var tracer = otel.Tracer("scrapers/firstgov")

const DefaultBaseUrl = "https://www.firstgov.gov/search"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// DefaultPageDelay is the polite wait between page fetches within one
// session. A little random jitter is added on top of it.
const DefaultPageDelay = 500 * time.Millisecond

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	defaults  fedsearch.Options
	hooks     Hooks
	pageDelay time.Duration
}

type ClientOptions struct {
	// BaseUrl overrides the portal search endpoint, mostly for tests.
	BaseUrl   string
	UserAgent string
	// PageDelay is the wait imposed before every fetch after a session's
	// first. Zero means DefaultPageDelay.
	PageDelay time.Duration
	// Defaults are merged over the built-in query defaults once at
	// construction time; they are not mutated afterwards.
	Defaults fedsearch.Options
	// Hooks receive extraction milestones. Optional.
	Hooks Hooks
	// BypassBotFilters routes requests through a transport that mimics a
	// real browser for portals fronted by bot mitigation.
	BypassBotFilters bool
}

func NewClient(opts ClientOptions) (*Client, error) {
	base := opts.BaseUrl
	if base == "" {
		base = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	client.SetHeader("user-agent", ua)
	client.SetTimeout(time.Second * 30)
	if opts.BypassBotFilters {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	telemetry.InstrumentResty(client, "scrapers/firstgov/http")

	defaults := defaultOptions()
	for k, v := range opts.Defaults {
		defaults[k] = v
	}

	delay := opts.PageDelay
	if delay == 0 {
		delay = DefaultPageDelay
	}

	c := &Client{
		BaseUrl:   baseUrl,
		Http:      client,
		defaults:  defaults,
		hooks:     opts.Hooks,
		pageDelay: delay,
	}
	return c, nil
}

func (c *Client) Name() string {
	return "firstgov"
}

// Search implements fedsearch.Backend.
func (c *Client) Search(ctx context.Context, query string, opts fedsearch.Options) (fedsearch.Cursor, error) {
	return c.StartSearch(query, opts), nil
}

// StartSearch builds the first page request and returns an idle session.
// No network traffic happens until the session is asked for results.
func (c *Client) StartSearch(query string, opts fedsearch.Options) *Session {
	return &Session{
		client:      c,
		state:       morePages,
		nextUrl:     c.firstPageURL(query, opts),
		approxCount: fedsearch.CountUnknown,
	}
}

type sessionState int

const (
	morePages sessionState = iota
	done
)

// Session is the state of one running query: the queued next request,
// the records accumulated so far and the approximate total. State is
// private to the session; a Session must only be used from a single
// goroutine.
type Session struct {
	client *Client

	state        sessionState
	nextUrl      string
	prevUrl      string
	pagesFetched int

	approxCount int
	records     []fedsearch.Record
	cursor      int
}

// FetchNextPage retrieves at most one page from the portal and returns
// the number of new records it produced. Once the session is exhausted,
// or a fetch has failed, it returns 0 without touching the network.
// Parse trouble is never an error: a page that yields nothing simply
// contributes zero records.
func (s *Session) FetchNextPage(ctx context.Context) int {
	if s.state == done {
		return 0
	}

	ctx, span := tracer.Start(ctx, "session:FetchNextPage")
	defer span.End()
	span.SetAttributes(attribute.KeyValue{
		Key:   "url",
		Value: attribute.StringValue(s.nextUrl),
	})

	if s.pagesFetched > 0 {
		if err := s.client.politeDelay(ctx); err != nil {
			span.RecordError(err)
			s.state = done
			return 0
		}
	}

	res, err := s.client.Http.R().
		SetContext(ctx).
		Get(s.nextUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		slog.WarnContext(ctx, "fetch failed, ending session", "url", s.nextUrl, "err", err)
		s.state = done
		return 0
	}
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected status")
		slog.WarnContext(ctx, "fetch returned bad status, ending session", "url", s.nextUrl, "status", res.StatusCode())
		s.state = done
		return 0
	}
	s.pagesFetched++

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		s.state = done
		return 0
	}

	pg := &page{url: s.nextUrl, body: string(res.Body()), doc: doc}
	result := chooseExtractor(pg).extract(ctx, pg)

	if result.hasCount && s.approxCount == fedsearch.CountUnknown {
		s.approxCount = result.count
		s.client.hooks.count(result.count)
		span.AddEvent("approximate count", trace.WithAttributes(
			attribute.Int("count", result.count),
		))
	}
	for _, rec := range result.records {
		s.records = append(s.records, rec)
		s.client.hooks.record(rec)
	}

	s.prevUrl = s.nextUrl
	next, more := nextPageURL(doc, s.prevUrl)
	s.client.hooks.pagination(next, more)
	if more {
		s.nextUrl = next
	} else {
		s.nextUrl = ""
		s.state = done
	}

	return len(result.records)
}

// Next implements fedsearch.Cursor. It drains the accumulated records,
// fetching further pages on demand.
func (s *Session) Next(ctx context.Context) (fedsearch.Record, bool) {
	for s.cursor >= len(s.records) {
		if s.state == done {
			return fedsearch.Record{}, false
		}
		s.FetchNextPage(ctx)
	}
	rec := s.records[s.cursor]
	s.cursor++
	return rec, true
}

func (s *Session) ApproximateResultCount() int {
	return s.approxCount
}

// Records returns every record accumulated so far, in encounter order.
func (s *Session) Records() []fedsearch.Record {
	return s.records
}

// Done reports whether the session has stopped fetching, either because
// the portal signaled no further pages or because a fetch failed.
func (s *Session) Done() bool {
	return s.state == done
}

func (c *Client) politeDelay(ctx context.Context) error {
	jitterMs, err := random.IntRange(0, 250)
	if err != nil {
		jitterMs = 0
	}
	t := time.NewTimer(c.pageDelay + time.Duration(jitterMs)*time.Millisecond)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	_ fedsearch.Backend = (*Client)(nil)
	_ fedsearch.Cursor  = (*Session)(nil)
)
