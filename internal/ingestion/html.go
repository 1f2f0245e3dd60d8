// Package ingestion turns uploaded CV documents into the plain text the
// segmenter works on.
package ingestion

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoText is returned when a document has no readable text.
var ErrNoText = errors.New("document contains no text")

const (
	noiseSelector = "script, style, noscript, template, iframe, svg, nav, .cookie-banner, .popup"
	blockSelector = "p, div, section, article, header, footer, aside, main, h1, h2, h3, h4, h5, h6, tr, table, ul, ol, dl, dt, dd, blockquote, pre, address"
)

var (
	inlineSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// ExtractText renders an HTML CV as text. Block elements end up on their own
// lines and list items get a "- " marker so headings and bullet lists survive
// for sectioning.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(noiseSelector).Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
		s.AfterHtml("\n")
	})
	doc.Find("td, th").AfterHtml(" ")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	text := cleanLines(root.Text())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func cleanLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
