package tools

import (
	"bufio"
	"bytes"
	htmlstd "html"
	"io"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// Articles shorter than this fall back to the plain DOM walker.
const readabilityMinWords = 50

type htmlContent struct {
	Title       string
	Description string
	Text        string
	Extractor   string
}

func looksLikeHTML(b []byte) bool {
	const max = 1024
	if len(b) > max {
		b = b[:max]
	}
	s := strings.TrimSpace(strings.ToLower(string(b)))
	sn := s
	if len(sn) > 512 {
		sn = sn[:512]
	}
	return strings.HasPrefix(s, "<!doctype") || strings.HasPrefix(s, "<html") || strings.Contains(sn, "<html")
}

func extractHTML(src []byte, pageURL *url.URL) htmlContent {
	doc, err := xhtml.Parse(bytes.NewReader(src))
	if err != nil {
		return htmlContent{Text: normalizeText(htmlstd.UnescapeString(string(src))), Extractor: "raw"}
	}
	out := htmlContent{Extractor: "text"}
	out.Title, out.Description = pageMeta(doc)

	if article, err := readability.FromReader(bytes.NewReader(src), pageURL); err == nil && article.Node != nil {
		if md, err := htmltomarkdown.ConvertNode(article.Node); err == nil {
			text := normalizeText(string(md))
			if len(strings.Fields(text)) >= readabilityMinWords {
				if t := strings.TrimSpace(article.Title()); t != "" {
					out.Title = t
				}
				out.Text = text
				out.Extractor = "readability"
				return out
			}
		}
	}

	out.Text = normalizeText(extractText(doc))
	return out
}

func pageMeta(doc *xhtml.Node) (title, description string) {
	sel := goquery.NewDocumentFromNode(doc)
	title = normalizeText(sel.Find("title").First().Text())
	description = strings.TrimSpace(sel.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	if description == "" {
		description = strings.TrimSpace(sel.Find(`meta[property="og:description"]`).First().AttrOr("content", ""))
	}
	return title, description
}

func extractText(doc *xhtml.Node) string {
	var b strings.Builder
	w := bufio.NewWriterSize(&b, 32<<10)

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n == nil {
			return
		}
		if n.Type == xhtml.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "br":
				_, _ = io.WriteString(w, "\n")
			case "p", "div", "section", "article", "header", "footer", "main", "nav", "aside",
				"h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "table", "tr", "td", "th":
				_, _ = io.WriteString(w, "\n")
			}
		}
		if n.Type == xhtml.TextNode {
			s := strings.TrimSpace(htmlstd.UnescapeString(n.Data))
			if s != "" {
				_, _ = io.WriteString(w, s)
				_, _ = io.WriteString(w, "\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	_ = w.Flush()
	return b.String()
}

func findElement(n *xhtml.Node, tag string) *xhtml.Node {
	var found *xhtml.Node
	var walk func(*xhtml.Node)
	walk = func(cur *xhtml.Node) {
		if found != nil {
			return
		}
		if cur.Type == xhtml.ElementNode && cur.Data == tag {
			found = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t")
		if strings.TrimSpace(ln) == "" {
			blank++
			if blank <= 1 {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, ln)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
