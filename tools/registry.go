package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/mosaxiv/braveagent/llm"
)

const (
	ToolSearchWeb      = "search_web"
	ToolGetPageContent = "get_page_content"
)

// Registry exposes the configured clients to the model as named tools.
// A tool is only advertised and executable when its client is set.
type Registry struct {
	Search *SearchClient
	Fetch  *Fetcher
}

func (r *Registry) Definitions() []llm.ToolDefinition {
	var defs []llm.ToolDefinition
	if r.Search != nil {
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.ToolFunctionDefinition{
				Name:        ToolSearchWeb,
				Description: "Search the web with the Brave Search API. Returns numbered results with title, URL and snippet. Use offset to page through results.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query":       map[string]any{"type": "string", "description": "Search query"},
						"count":       map[string]any{"type": "integer", "minimum": 0, "description": "Number of results (default 10)"},
						"offset":      map[string]any{"type": "integer", "minimum": 0, "description": "Zero-based page index for pagination, each page holding count results; Brave accepts 0-9 (default 0)"},
						"country":     map[string]any{"type": "string", "description": "Country code for localized results (default US)"},
						"search_lang": map[string]any{"type": "string", "description": "Language of results (default en)"},
						"ui_lang":     map[string]any{"type": "string", "description": "User interface language (default en-US)"},
						"safesearch":  map[string]any{"type": "string", "enum": []string{"off", "moderate", "strict"}, "description": "Content filtering level (default moderate)"},
					},
					"required": []string{"query"},
				},
			},
		})
	}
	if r.Fetch != nil {
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.ToolFunctionDefinition{
				Name:        ToolGetPageContent,
				Description: "Fetch a web page and return its readable text content (truncated).",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"url": map[string]any{"type": "string", "description": "Absolute http(s) URL"},
					},
					"required": []string{"url"},
				},
			},
		})
	}
	return defs
}

func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage(`{}`)
	}
	switch strings.TrimSpace(name) {
	case ToolSearchWeb:
		if r.Search == nil {
			return "", invalidArgf("tool not enabled: %s", name)
		}
		var a struct {
			Query      string  `json:"query"`
			Count      *int    `json:"count"`
			Offset     *int    `json:"offset"`
			Country    *string `json:"country"`
			SearchLang *string `json:"search_lang"`
			UILang     *string `json:"ui_lang"`
			SafeSearch *string `json:"safesearch"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", invalidArgf("%s arguments: %v", name, err)
		}
		q := NewSearchQuery(a.Query)
		if a.Count != nil {
			q.Count = *a.Count
		}
		if a.Offset != nil {
			q.Offset = *a.Offset
		}
		if a.Country != nil {
			q.Country = *a.Country
		}
		if a.SearchLang != nil {
			q.SearchLang = *a.SearchLang
		}
		if a.UILang != nil {
			q.UILang = *a.UILang
		}
		if a.SafeSearch != nil {
			q.SafeSearch = *a.SafeSearch
		}
		page, err := r.Search.Search(ctx, q)
		if err != nil {
			return "", err
		}
		return FormatSearchPage(page), nil
	case ToolGetPageContent:
		if r.Fetch == nil {
			return "", invalidArgf("tool not enabled: %s", name)
		}
		var a struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(args, &a); err != nil {
			return "", invalidArgf("%s arguments: %v", name, err)
		}
		page, err := r.Fetch.Fetch(ctx, a.URL)
		if err != nil {
			return "", err
		}
		return page.String(), nil
	default:
		return "", invalidArgf("unknown tool: %s", name)
	}
}
