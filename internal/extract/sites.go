package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/grantwatch/harvester/internal/harvest"
)

// Site-specific rules. Every rule is total: a missing or malformed element
// skips that record only, never the whole page.

// GurtRule extracts grant announcements from the GURT resource centre
// listing (gurt.org.ua). Announcements are rendered as article cards with a
// linked heading, a teaser paragraph and a ribbon carrying the deadline.
func GurtRule(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	doc.Find("article.announce, div.announce-item, .news-list .item").Each(func(_ int, item *goquery.Selection) {
		title := firstText(item, "h2 a", "h3 a", ".title a", "h2", "h3")
		if title == "" {
			return
		}
		records = append(records, harvest.RawRecord{
			Title:       title,
			URL:         absoluteURL(src.URL, firstAttr(item, "href", "h2 a", "h3 a", ".title a", "a")),
			Description: firstText(item, ".teaser", ".announce-text", "p"),
			Deadline:    strings.TrimPrefix(firstText(item, ".deadline", ".term"), "Дедлайн: "),
			Tags:        []string{"gurt"},
		})
	})
	return records
}

// ProstirRule extracts funding calls from the Prostir civil-society portal
// (prostir.ua). Calls live in a list of linked titles with metadata rows.
func ProstirRule(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	doc.Find(".grants-list .grant, article.post, .competition-item").Each(func(_ int, item *goquery.Selection) {
		title := firstText(item, "h2 a", ".entry-title a", "h2", ".entry-title")
		if title == "" {
			return
		}
		rec := harvest.RawRecord{
			Title:       title,
			URL:         absoluteURL(src.URL, firstAttr(item, "href", "h2 a", ".entry-title a", "a")),
			Description: firstText(item, ".entry-summary", ".excerpt", "p"),
			Deadline:    firstText(item, ".meta .deadline", "time"),
		}
		if due := firstAttr(item, "datetime", "time"); due != "" {
			rec.Deadline = due
		}
		records = append(records, rec)
	})
	return records
}

// ProzorroRule extracts public tenders from the Prozorro procurement portal
// search results (prozorro.gov.ua). Every row is a tender by definition.
func ProzorroRule(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	doc.Find(".search-result, .tender-card, tr.tender-row").Each(func(_ int, item *goquery.Selection) {
		title := firstText(item, ".tender-title a", ".title a", "td.subject a", ".tender-title")
		if title == "" {
			return
		}
		rec := harvest.RawRecord{
			Title:    title,
			URL:      absoluteURL(src.URL, firstAttr(item, "href", ".tender-title a", ".title a", "td.subject a", "a")),
			Deadline: firstText(item, ".tender-deadline", ".date-end", "td.deadline"),
			TypeHint: harvest.TypeTenders,
			Currency: "UAH",
			Tags:     []string{"prozorro", "public-procurement"},
		}
		if amountText := firstText(item, ".tender-amount", ".budget", "td.amount"); amountText != "" {
			rec.Amount = parseAmount(amountText)
		}
		records = append(records, rec)
	})
	return records
}

// HouseOfEuropeRule extracts grant programmes from the House of Europe site
// (houseofeurope.org.ua). Programmes are cards whose status badge marks open
// calls; closed calls are skipped.
func HouseOfEuropeRule(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	doc.Find(".grant-card, .programme-card, .opportunity").Each(func(_ int, item *goquery.Selection) {
		status := strings.ToLower(firstText(item, ".status", ".badge"))
		if strings.Contains(status, "closed") || strings.Contains(status, "завершено") {
			return
		}
		title := firstText(item, "h3", "h2", ".card-title")
		if title == "" {
			return
		}
		records = append(records, harvest.RawRecord{
			Title:       title,
			URL:         absoluteURL(src.URL, nearestLink(item)),
			Description: firstText(item, ".card-text", ".description", "p"),
			Deadline:    firstText(item, ".deadline", ".card-deadline"),
			TypeHint:    harvest.TypeGrants,
			Currency:    "EUR",
			Tags:        []string{"house-of-europe", "eu"},
		})
	})
	return records
}

// EUNeighboursRule extracts opportunities from the EU Neighbours East portal
// (euneighbourseast.eu), an English-language listing of calls.
func EUNeighboursRule(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	doc.Find(".opportunity-item, article.opportunity, .funding-call").Each(func(_ int, item *goquery.Selection) {
		title := firstText(item, "h2 a", "h3 a", "h2", "h3")
		if title == "" {
			return
		}
		desc := firstText(item, ".summary", ".excerpt", "p")
		rec := harvest.RawRecord{
			Title:       title,
			URL:         absoluteURL(src.URL, firstAttr(item, "href", "h2 a", "h3 a", "a")),
			Description: desc,
			Deadline:    firstText(item, ".deadline-date", ".deadline"),
			Currency:    "EUR",
			Tags:        []string{"eu-neighbours"},
		}
		if harvest.MatchesFundingKeyword(title + " " + desc) {
			rec.TypeHint = harvest.ClassifyType(title + " " + desc)
		}
		records = append(records, rec)
	})
	return records
}

// DiiaBusinessRule extracts state support programmes from the Diia.Business
// catalogue (business.diia.gov.ua): mostly soft loans and grant programmes
// for entrepreneurs.
func DiiaBusinessRule(doc *goquery.Document, src harvest.Source) []harvest.RawRecord {
	var records []harvest.RawRecord
	doc.Find(".program-card, .support-item").Each(func(_ int, item *goquery.Selection) {
		title := firstText(item, ".program-title", "h3", "h2")
		if title == "" {
			return
		}
		rec := harvest.RawRecord{
			Title:       title,
			URL:         absoluteURL(src.URL, nearestLink(item)),
			Description: firstText(item, ".program-description", "p"),
			Deadline:    firstText(item, ".program-deadline", ".deadline"),
			Currency:    "UAH",
			Tags:        []string{"diia", "state-support"},
		}
		if amountText := firstText(item, ".program-amount", ".amount"); amountText != "" {
			rec.Amount = parseAmount(amountText)
		}
		kind := strings.ToLower(firstText(item, ".program-kind", ".kind") + " " + title)
		rec.TypeHint = harvest.ClassifyType(kind)
		records = append(records, rec)
	})
	return records
}
