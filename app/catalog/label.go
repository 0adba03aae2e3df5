package catalog

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName derives a human readable label from the last path segment of a
// product URL: "https://shop/product/123/pikachu-plush" becomes "Pikachu Plush".
// URLs without a usable segment are returned unchanged.
func DisplayName(productURL string) string {
	path := productURL
	if u, err := url.Parse(productURL); err == nil {
		path = u.Path
	}

	path = strings.TrimRight(path, "/")
	segment := path[strings.LastIndex(path, "/")+1:]
	segment = strings.TrimSpace(strings.ReplaceAll(segment, "-", " "))
	if segment == "" {
		return productURL
	}

	// Casers keep state between calls and are created per use.
	return cases.Title(language.AmericanEnglish).String(segment)
}
