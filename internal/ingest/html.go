package ingest

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "p, div, li, ul, ol, tr, td, th, h1, h2, h3, h4, h5, h6, section, article, header, footer, blockquote, pre"

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template, head").Remove()

	// Keep block boundaries so adjacent items do not run together
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	return normalizeWhitespace(doc.Text()), nil
}
