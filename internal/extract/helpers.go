package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText collapses whitespace inside the selection's text.
func cleanText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// firstText returns the cleaned text of the first match of any selector.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		found := sel.Find(s).First()
		if found.Length() == 0 {
			continue
		}
		if text := cleanText(found); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first match of any selector.
func firstAttr(sel *goquery.Selection, attr string, selectors ...string) string {
	for _, s := range selectors {
		if val, ok := sel.Find(s).First().Attr(attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val
			}
		}
	}
	return ""
}

// nearestLink resolves a record URL for an element: its own href, a contained
// link, or the closest enclosing anchor.
func nearestLink(sel *goquery.Selection) string {
	if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	if href, ok := sel.Find("a[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	if href, ok := sel.Closest("a[href]").Attr("href"); ok && strings.TrimSpace(href) != "" {
		return strings.TrimSpace(href)
	}
	return ""
}

// absoluteURL resolves href against the source page URL. Unresolvable hrefs
// come back unchanged rather than dropping the record.
func absoluteURL(sourceURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(sourceURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// parseAmount pulls the first plausible money figure out of text, tolerating
// thousands separators ("1 500 000 грн", "10,000").
func parseAmount(text string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		case r == ' ', r == ' ', r == ',':
			return -1
		default:
			return '|'
		}
	}, text)
	for _, chunk := range strings.Split(cleaned, "|") {
		if chunk == "" {
			continue
		}
		if v, err := strconv.ParseFloat(chunk, 64); err == nil && v > 0 {
			return &v
		}
	}
	return nil
}
