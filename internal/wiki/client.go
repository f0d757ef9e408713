// Package wiki looks up encyclopedia summaries through the MediaWiki
// action API.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ResultKind distinguishes the three lookup outcomes. Ambiguity and
// not-found are informational, not errors: the caller injects them into the
// conversation as content.
type ResultKind int

const (
	KindSummary ResultKind = iota
	KindDisambiguation
	KindNotFound
)

type Result struct {
	Kind    ResultKind
	Summary string   // set for KindSummary
	Options []string // set for KindDisambiguation
}

// Config holds client settings. BaseURL and HTTPClient are optional (tests).
type Config struct {
	Lang       string // Wikipedia language code, e.g. "es"
	Timeout    time.Duration
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg Config) *Client {
	lang := cfg.Lang
	if lang == "" {
		lang = "es"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.wikipedia.org", lang)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type page struct {
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Extract   string `json:"extract"`
	PageProps *struct {
		Disambiguation *string `json:"disambiguation"`
	} `json:"pageprops"`
	Links []struct {
		Title string `json:"title"`
	} `json:"links"`
}

type queryResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

// Lookup fetches a short summary for the query. A disambiguation page yields
// the list of candidate titles instead; a missing page yields KindNotFound.
func (c *Client) Lookup(ctx context.Context, query string) (Result, error) {
	p, err := c.queryPage(ctx, query, url.Values{
		"prop":        {"extracts|pageprops"},
		"explaintext": {"1"},
		"exintro":     {"1"},
		"exsentences": {"3"},
		"ppprop":      {"disambiguation"},
	})
	if err != nil {
		return Result{}, err
	}
	if p == nil || p.Missing {
		return Result{Kind: KindNotFound}, nil
	}
	if p.PageProps != nil && p.PageProps.Disambiguation != nil {
		options, err := c.disambiguationOptions(ctx, p.Title)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: KindDisambiguation, Options: options}, nil
	}
	return Result{Kind: KindSummary, Summary: p.Extract}, nil
}

// disambiguationOptions lists the article links of a disambiguation page,
// the candidates the query could have meant.
func (c *Client) disambiguationOptions(ctx context.Context, title string) ([]string, error) {
	p, err := c.queryPage(ctx, title, url.Values{
		"prop":        {"links"},
		"plnamespace": {"0"},
		"pllimit":     {"20"},
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	options := make([]string, 0, len(p.Links))
	for _, link := range p.Links {
		options = append(options, link.Title)
	}
	return options, nil
}

func (c *Client) queryPage(ctx context.Context, title string, extra url.Values) (*page, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"redirects":     {"1"},
		"titles":        {title},
	}
	for k, v := range extra {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build wikipedia request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}
	if len(decoded.Query.Pages) == 0 {
		return nil, nil
	}
	return &decoded.Query.Pages[0], nil
}
