package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultFetchMaxChars = 20000

	defaultWebFetchTimeout     = 30 * time.Second
	defaultWebFetchBodyMaxSize = int64(4 << 20)
	maxFetchRedirects          = 5
	fetchUserAgent             = "Mozilla/5.0 (compatible; braveagent/0.1)"
)

type FetchOptions struct {
	Timeout        time.Duration
	MaxChars       int
	MaxBodyBytes   int64
	AllowedDomains []string
	BlockedDomains []string
	Log            *zerolog.Logger
}

type Fetcher struct {
	timeout      time.Duration
	maxChars     int
	maxBodyBytes int64
	policy       hostPolicy
	log          zerolog.Logger
}

type Page struct {
	URL         string
	FinalURL    string
	Status      int
	ContentType string
	Extractor   string
	Title       string
	Description string
	Text        string
	Truncated   bool
}

func NewFetcher(opts FetchOptions) *Fetcher {
	f := &Fetcher{
		timeout:      opts.Timeout,
		maxChars:     opts.MaxChars,
		maxBodyBytes: opts.MaxBodyBytes,
		policy:       newHostPolicy(opts.AllowedDomains, opts.BlockedDomains),
		log:          zerolog.Nop(),
	}
	if f.timeout <= 0 {
		f.timeout = defaultWebFetchTimeout
	}
	if f.maxChars <= 0 {
		f.maxChars = DefaultFetchMaxChars
	}
	if f.maxBodyBytes <= 0 {
		f.maxBodyBytes = defaultWebFetchBodyMaxSize
	}
	if opts.Log != nil {
		f.log = opts.Log.With().Str("component", "web_fetch").Logger()
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, invalidArgf("url is empty")
	}
	pu, err := url.Parse(rawURL)
	if err != nil {
		return nil, invalidArgf("malformed url: %v", err)
	}
	if pu.Scheme != "http" && pu.Scheme != "https" {
		return nil, invalidArgf("only http/https allowed: %q", pu.Scheme)
	}
	if normalizeFetchHost(pu.Host) == "" {
		return nil, invalidArgf("missing host")
	}
	if err := f.policy.check(pu.Host); err != nil {
		return nil, fmt.Errorf("fetch blocked: %w", err)
	}

	client := &http.Client{
		Timeout: f.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxFetchRedirects {
				return fmt.Errorf("stopped after %d redirects", maxFetchRedirects)
			}
			if err := f.policy.check(req.URL.Host); err != nil {
				return fmt.Errorf("redirect blocked: %w", err)
			}
			return nil
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pu.String(), nil)
	if err != nil {
		return nil, invalidArgf("%v", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", fetchUserAgent)

	f.log.Info().Str("url", rawURL).Msg("fetching page")
	resp, err := client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) && errors.Is(ue.Err, ErrInvalidArgument) {
			return nil, ue.Err
		}
		return nil, &UpstreamError{Service: "fetch", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, &UpstreamError{Service: "fetch", StatusCode: resp.StatusCode, Err: err}
	}
	bodyTruncated := int64(len(body)) > f.maxBodyBytes
	if bodyTruncated {
		body = body[:f.maxBodyBytes]
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Warn().Str("url", rawURL).Int("status", resp.StatusCode).Msg("fetch failed")
		return nil, &UpstreamError{Service: "fetch", StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 100)}
	}

	page := &Page{
		URL:         rawURL,
		FinalURL:    rawURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		page.FinalURL = resp.Request.URL.String()
	}

	ct := strings.ToLower(page.ContentType)
	switch {
	case strings.Contains(ct, "application/json"):
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			page.Text = buf.String()
			page.Extractor = "json"
		} else {
			page.Text = string(body)
			page.Extractor = "raw"
		}
	case strings.Contains(ct, "text/html") || strings.Contains(ct, "xhtml") || looksLikeHTML(body):
		finalURL := pu
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL
		}
		hc := extractHTML(body, finalURL)
		page.Title = hc.Title
		page.Description = hc.Description
		page.Text = hc.Text
		page.Extractor = hc.Extractor
	default:
		page.Text = string(body)
		page.Extractor = "raw"
	}

	var cut bool
	page.Text, cut = truncateRunes(page.Text, f.maxChars)
	page.Truncated = cut || bodyTruncated
	return page, nil
}

func (p *Page) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if p.Title != "" {
		b.WriteString("# " + p.Title + "\n")
	}
	b.WriteString("URL: " + p.FinalURL + "\n")
	if p.Description != "" {
		b.WriteString("Description: " + p.Description + "\n")
	}
	b.WriteString("\n")
	b.WriteString(p.Text)
	if p.Truncated {
		b.WriteString("\n\n(truncated)")
	}
	return b.String()
}
