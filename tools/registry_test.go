package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryDefinitions_GatedByClients(t *testing.T) {
	names := func(r *Registry) []string {
		var out []string
		for _, d := range r.Definitions() {
			if d.Type != "function" {
				t.Fatalf("type=%q", d.Type)
			}
			out = append(out, d.Function.Name)
		}
		return out
	}

	full := &Registry{Search: NewSearchClient(SearchOptions{APIKey: "k"}), Fetch: NewFetcher(FetchOptions{})}
	if got := strings.Join(names(full), ","); got != "search_web,get_page_content" {
		t.Fatalf("definitions=%s", got)
	}
	if got := names(&Registry{Fetch: NewFetcher(FetchOptions{})}); len(got) != 1 || got[0] != ToolGetPageContent {
		t.Fatalf("definitions=%v", got)
	}

	def := full.Definitions()[0].Function
	req, _ := def.Parameters["required"].([]string)
	if len(req) != 1 || req[0] != "query" {
		t.Fatalf("required=%v", def.Parameters["required"])
	}
	props, _ := def.Parameters["properties"].(map[string]any)
	offset, _ := props["offset"].(map[string]any)
	if desc, _ := offset["description"].(string); !strings.Contains(desc, "page index") {
		t.Fatalf("offset description=%q", desc)
	}
}

func TestRegistryExecute_Errors(t *testing.T) {
	r := &Registry{}
	tests := []struct {
		name string
		tool string
		args string
	}{
		{name: "unknown tool", tool: "exec", args: `{}`},
		{name: "search disabled", tool: ToolSearchWeb, args: `{"query":"x"}`},
		{name: "fetch disabled", tool: ToolGetPageContent, args: `{"url":"https://example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Execute(context.Background(), tt.tool, json.RawMessage(tt.args)); !IsInvalidArgument(err) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}

	full := &Registry{Search: NewSearchClient(SearchOptions{APIKey: "k"}), Fetch: NewFetcher(FetchOptions{})}
	if _, err := full.Execute(context.Background(), ToolSearchWeb, json.RawMessage(`{"query": 5}`)); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for bad json, got %v", err)
	}
	if _, err := full.Execute(context.Background(), ToolGetPageContent, nil); !IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument for missing url, got %v", err)
	}
}

func TestRegistryExecute_SearchAppliesDefaults(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"Go","url":"https://go.dev","description":"The Go language"}]}}`))
	}))
	defer srv.Close()

	r := &Registry{Search: NewSearchClient(SearchOptions{APIKey: "k", Endpoint: srv.URL})}
	out, err := r.Execute(context.Background(), ToolSearchWeb, json.RawMessage(`{"query":"golang","offset":2,"safesearch":"off"}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "1. Go\n   https://go.dev") {
		t.Fatalf("out=%q", out)
	}
	want := map[string]string{"q": "golang", "count": "10", "offset": "2", "country": "US", "search_lang": "en", "ui_lang": "en-US", "safesearch": "off"}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("param %s=%q want %q", k, got[k], v)
		}
	}
}

func TestRegistryExecute_Fetch(t *testing.T) {
	srv := serve(t, "text/plain", http.StatusOK, "plain body")
	r := &Registry{Fetch: NewFetcher(FetchOptions{})}
	out, err := r.Execute(context.Background(), ToolGetPageContent, json.RawMessage(`{"url":"`+srv.URL+`"}`))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "URL: "+srv.URL) || !strings.HasSuffix(out, "plain body") {
		t.Fatalf("out=%q", out)
	}
}
