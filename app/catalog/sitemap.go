package catalog

import (
	"fmt"
	"io"
	"strings"

	xpp "github.com/mmcdole/goxpp"
)

const (
	SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XHTMLNamespace   = "http://www.w3.org/1999/xhtml"

	DefaultLocale = "en-us"
)

// SitemapParser extracts localized product links from a sitemap document.
type SitemapParser struct {
	locale string
}

func NewSitemapParser(locale string) *SitemapParser {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	return &SitemapParser{locale: locale}
}

// Run streams the document and returns, for every <url> entry, the href of
// its first xhtml:link tagged with the parser locale. Blank links are skipped
// and duplicates keep their first position.
func (p *SitemapParser) Run(r io.Reader) (*Catalog, error) {
	parser := xpp.NewXMLPullParser(r, false, nil)
	products := New()

	inURL := false
	href := ""

	for {
		event, err := parser.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to parse sitemap: %w", err)
		}

		switch event {
		case xpp.EndDocument:
			return products, nil

		case xpp.StartTag:
			switch {
			case parser.Space == SitemapNamespace && parser.Name == "url":
				inURL = true
				href = ""
			case inURL && href == "" && parser.Space == XHTMLNamespace && parser.Name == "link":
				if strings.EqualFold(parser.Attribute("hreflang"), p.locale) {
					href = parser.Attribute("href")
				}
			}

		case xpp.EndTag:
			if inURL && parser.Name == "url" {
				if strings.TrimSpace(href) != "" {
					products.Add(href)
				}
				inURL = false
				href = ""
			}
		}
	}
}
