package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	DefaultBraveSearchURL = "https://api.search.brave.com/res/v1/web/search"

	defaultSearchCount      = 10
	defaultSearchCountry    = "US"
	defaultSearchLang       = "en"
	defaultSearchUILang     = "en-US"
	defaultSearchSafeSearch = "moderate"
	defaultSearchTimeout    = 30 * time.Second
	searchBodyMaxSize       = int64(2 << 20)
	searchPageSize          = 10
	searchMaxPages          = 10
)

var safeSearchLevels = map[string]bool{"off": true, "moderate": true, "strict": true}

type SearchQuery struct {
	Query      string
	Count      int
	Offset     int
	Country    string
	SearchLang string
	UILang     string
	SafeSearch string
}

func NewSearchQuery(query string) SearchQuery {
	return SearchQuery{
		Query:      query,
		Count:      defaultSearchCount,
		Offset:     0,
		Country:    defaultSearchCountry,
		SearchLang: defaultSearchLang,
		UILang:     defaultSearchUILang,
		SafeSearch: defaultSearchSafeSearch,
	}
}

func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return invalidArgf("query is empty")
	}
	if q.Count < 0 {
		return invalidArgf("count must be >= 0, got %d", q.Count)
	}
	if q.Offset < 0 {
		return invalidArgf("offset must be >= 0, got %d", q.Offset)
	}
	if !safeSearchLevels[q.SafeSearch] {
		return invalidArgf("safesearch must be one of off, moderate, strict, got %q", q.SafeSearch)
	}
	return nil
}

func (q SearchQuery) values() url.Values {
	v := url.Values{}
	v.Set("q", strings.TrimSpace(q.Query))
	v.Set("count", strconv.Itoa(q.Count))
	v.Set("offset", strconv.Itoa(q.Offset))
	if q.Country != "" {
		v.Set("country", q.Country)
	}
	if q.SearchLang != "" {
		v.Set("search_lang", q.SearchLang)
	}
	if q.UILang != "" {
		v.Set("ui_lang", q.UILang)
	}
	v.Set("safesearch", q.SafeSearch)
	return v
}

type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

type SearchPage struct {
	Query         string
	Offset        int
	Results       []SearchResult
	MoreAvailable bool
}

type SearchOptions struct {
	APIKey     string
	Endpoint   string
	MaxRetries int
	Timeout    time.Duration
	Log        *zerolog.Logger
}

type SearchClient struct {
	apiKey   string
	endpoint string
	http     *retryablehttp.Client
	log      zerolog.Logger
}

func NewSearchClient(opts SearchOptions) *SearchClient {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultBraveSearchURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = opts.Log.With().Str("component", "brave_search").Logger()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = max(opts.MaxRetries, 0)
	rc.Logger = retryLogger{log: log}
	rc.HTTPClient.Timeout = timeout
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &SearchClient{
		apiKey:   opts.APIKey,
		endpoint: endpoint,
		http:     rc,
		log:      log,
	}
}

func (c *SearchClient) Search(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, invalidArgf("brave api key not configured (BRAVE_API_KEY)")
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, invalidArgf("brave endpoint: %v", err)
	}
	u.RawQuery = q.values().Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	c.log.Info().
		Str("query", q.Query).
		Int("count", q.Count).
		Int("offset", q.Offset).
		Msg("searching")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Service: "brave", Err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, searchBodyMaxSize))
	if err != nil {
		return nil, &UpstreamError{Service: "brave", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("brave search failed")
		return nil, &UpstreamError{Service: "brave", StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(b)), 512)}
	}
	return parseBraveSearchResults(q, b)
}

// SearchAll walks result pages until maxResults are collected or the API
// runs dry. Offset is a page index and Brave caps it at 9. Errors after the
// first page return what was collected so far.
func (c *SearchClient) SearchAll(ctx context.Context, q SearchQuery, maxResults int) (*SearchPage, error) {
	if maxResults <= 0 {
		maxResults = 30
	}
	q.Count = searchPageSize

	out := &SearchPage{Query: q.Query}
	for page := 0; page < searchMaxPages && len(out.Results) < maxResults; page++ {
		q.Offset = page
		res, err := c.Search(ctx, q)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			c.log.Warn().Err(err).Int("page", page).Msg("stopping pagination")
			break
		}
		out.Results = append(out.Results, res.Results...)
		out.MoreAvailable = res.MoreAvailable
		if len(out.Results) >= maxResults {
			out.Results = out.Results[:maxResults]
			break
		}
		if len(res.Results) == 0 || !res.MoreAvailable {
			break
		}
	}
	return out, nil
}

func parseBraveSearchResults(q SearchQuery, body []byte) (*SearchPage, error) {
	type item struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	var parsed struct {
		Query struct {
			MoreResultsAvailable bool `json:"more_results_available"`
		} `json:"query"`
		Web struct {
			Results []item `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ParseError{Service: "brave", Err: err}
	}
	page := &SearchPage{
		Query:         strings.TrimSpace(q.Query),
		Offset:        q.Offset,
		Results:       make([]SearchResult, 0, len(parsed.Web.Results)),
		MoreAvailable: parsed.Query.MoreResultsAvailable,
	}
	for _, it := range parsed.Web.Results {
		page.Results = append(page.Results, SearchResult{
			Title:   strings.TrimSpace(it.Title),
			URL:     strings.TrimSpace(it.URL),
			Snippet: strings.TrimSpace(it.Description),
		})
	}
	return page, nil
}

type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, kv ...any) { l.log.Error().Fields(kv).Msg(msg) }
func (l retryLogger) Info(msg string, kv ...any) { l.log.Debug().Fields(kv).Msg(msg) }
func (l retryLogger) Debug(msg string, kv ...any) { l.log.Debug().Fields(kv).Msg(msg) }
func (l retryLogger) Warn(msg string, kv ...any) { l.log.Warn().Fields(kv).Msg(msg) }
