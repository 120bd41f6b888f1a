// Package extract turns rich statement text into the plain text and cited
// links the evidence classifier is prompted with.
package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an http(s) link cited inside a statement
type Link struct {
	URL  string `json:"url"`
	Host string `json:"host"`
	Text string `json:"text,omitempty"`
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "tr": true, "td": true, "th": true, "section": true,
}

// PlainText strips markup from statement text. Text without markup is only
// whitespace-normalized.
func PlainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return collapseSpace(content)
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return collapseSpace(content)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(doc)

	return collapseSpace(b.String())
}

// Links returns the distinct absolute http(s) links in statement text, in
// document order.
func Links(content string) []Link {
	if !strings.Contains(content, "<a") {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var links []Link
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := linkFrom(n); ok && !seen[link.URL] {
				seen[link.URL] = true
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

func linkFrom(n *html.Node) (Link, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
		}
	}
	if href == "" || strings.HasPrefix(href, "#") {
		return Link{}, false
	}

	parsed, err := url.Parse(href)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Link{}, false
	}

	return Link{
		URL:  parsed.String(),
		Host: parsed.Host,
		Text: collapseSpace(nodeText(n)),
	}, true
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
