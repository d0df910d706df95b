package knowledge

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
)

var whitespace = regexp.MustCompile(`\s+`)

// normalizeDetail turns an HTML detail into Markdown so the model sees
// structure instead of tags. Plain-text details are returned unchanged.
func normalizeDetail(detail string) string {
	if !hasMarkup(detail) {
		return detail
	}
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(detail)
	if err != nil || strings.TrimSpace(markdown) == "" {
		return extractText(detail)
	}
	return strings.TrimSpace(markdown)
}

// hasMarkup reports whether s contains at least one HTML element.
func hasMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}

// extractText flattens HTML to its visible text.
func extractText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var sb strings.Builder
	extractTextFromNode(doc, &sb)
	return strings.TrimSpace(whitespace.ReplaceAllString(sb.String(), " "))
}

func extractTextFromNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}

	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextFromNode(c, sb)
	}
}
