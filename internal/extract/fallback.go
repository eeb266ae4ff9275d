package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/grantwatch/harvester/internal/harvest"
)

// fallbackMaxRecords bounds the output of the generic rule so keyword-dense
// pages cannot flood a run with noise.
const fallbackMaxRecords = 20

// Candidate elements scanned by the generic rule: links, headings and
// card-like containers.
const fallbackCandidates = "a[href], h1, h2, h3, h4, article, .card, .item, .post, li"

// Fallback is the generic extraction rule used when no site-specific rule is
// registered for a hostname. It keeps any candidate element whose text
// contains a funding keyword, resolves the nearest link, and classifies the
// type from the matched text.
func Fallback(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	seen := make(map[string]struct{})

	doc.Find(fallbackCandidates).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := cleanText(sel)
		if title == "" || len(title) > 300 {
			return true
		}
		if !harvest.MatchesFundingKeyword(title) {
			return true
		}
		link := absoluteURL(src.URL, nearestLink(sel))
		key := strings.ToLower(title) + "|" + strings.ToLower(link)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		records = append(records, harvest.RawRecord{
			Title:    title,
			URL:      link,
			TypeHint: harvest.ClassifyType(title),
			Tags:     harvest.KeywordTags(title),
		})
		return len(records) < fallbackMaxRecords
	})

	return records
}
