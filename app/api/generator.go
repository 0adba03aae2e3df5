package api

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/catalog-watch/app/catalog"
	"github.com/lysyi3m/catalog-watch/app/store"
)

const feedItemLimit = 50

// Generator renders the change history as an RSS 2.0 feed, newest first.
type Generator struct {
	baseURL string
	version string
}

func NewGenerator(baseURL, version string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (g *Generator) Run(records []store.ChangeRecord) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", "Catalog changes", 4)
	g.writeElement(&buf, "link", g.baseURL+"/changes", 4)
	g.writeElement(&buf, "description", "Products added to and removed from the tracked catalog", 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.baseURL+"/changes.rss")))

	lastBuildDate := time.Now().In(time.Local)
	if len(records) > 0 {
		lastBuildDate = records[len(records)-1].Timestamp
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Catalog-Watch/%s", g.version), 4)

	for i, written := len(records)-1, 0; i >= 0 && written < feedItemLimit; i, written = i-1, written+1 {
		g.writeItem(&buf, records[i])
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, record store.ChangeRecord) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(record.ID.String()))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", fmt.Sprintf("%d added, %d removed", len(record.Added), len(record.Removed)), 6)
	g.writeElement(buf, "link", fmt.Sprintf("%s/change/%s", g.baseURL, record.ID), 6)
	g.writeElement(buf, "description", describe(record), 6)
	g.writeElement(buf, "pubDate", record.Timestamp.Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func describe(record store.ChangeRecord) string {
	var lines []string
	for _, product := range record.Added {
		lines = append(lines, fmt.Sprintf("+ %s (%s)", catalog.DisplayName(product), product))
	}
	for _, product := range record.Removed {
		lines = append(lines, fmt.Sprintf("- %s (%s)", catalog.DisplayName(product), product))
	}
	return strings.Join(lines, "\n")
}
