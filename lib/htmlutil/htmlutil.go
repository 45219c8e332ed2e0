package htmlutil

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Lines returns the selection's text content split into trimmed,
// non-empty lines.
func Lines(sel *goquery.Selection) []string {
	var buffer bytes.Buffer
	for _, node := range sel.Nodes {
		buffer.WriteString(GetText(node))
	}

	var lines []string
	for _, raw := range strings.Split(buffer.String(), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ResolveURL resolves a possibly-relative href against a base url,
// returning "" when the href cannot be parsed.
func ResolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
