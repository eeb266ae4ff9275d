package harvest

import "strings"

// Multilingual funding vocabulary. Stems are matched by lower-cased substring
// so that Ukrainian case endings (гранту, грантів, ...) still hit.
var (
	tenderStems = []string{
		"тендер", "закупівл", "торги", "tender", "procurement", "bid",
	}
	loanStems = []string{
		"кредит", "позик", "мікрокредит", "loan", "lending", "credit line",
	}
	investmentStems = []string{
		"інвест", "венчур", "investment", "investor", "venture", "equity",
	}
	grantStems = []string{
		"грант", "конкурс", "фінансуванн", "донор", "стипенд",
		"grant", "funding", "call for proposals", "fellowship", "subsid",
	}
)

// MatchesFundingKeyword reports whether text contains any term from the
// funding vocabulary. Used by the generic fallback rule to pick candidates.
func MatchesFundingKeyword(text string) bool {
	t := strings.ToLower(text)
	for _, group := range [][]string{tenderStems, loanStems, investmentStems, grantStems} {
		for _, stem := range group {
			if strings.Contains(t, stem) {
				return true
			}
		}
	}
	return false
}

// ClassifyType maps text to a grant type by keyword lookup. Tender terms win
// over loan terms, loan terms over investment terms; anything else that
// matches the vocabulary at all is a grant.
func ClassifyType(text string) GrantType {
	t := strings.ToLower(text)
	for _, stem := range tenderStems {
		if strings.Contains(t, stem) {
			return TypeTenders
		}
	}
	for _, stem := range loanStems {
		if strings.Contains(t, stem) {
			return TypeLoans
		}
	}
	for _, stem := range investmentStems {
		if strings.Contains(t, stem) {
			return TypePrivateFunding
		}
	}
	return TypeGrants
}

// KeywordTags derives tags from the vocabulary stems present in text.
func KeywordTags(text string) []string {
	t := strings.ToLower(text)
	var tags []string
	seen := make(map[string]struct{})
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	for _, stem := range tenderStems {
		if strings.Contains(t, stem) {
			add("tenders")
		}
	}
	for _, stem := range loanStems {
		if strings.Contains(t, stem) {
			add("loans")
		}
	}
	for _, stem := range investmentStems {
		if strings.Contains(t, stem) {
			add("investment")
		}
	}
	for _, stem := range grantStems {
		if strings.Contains(t, stem) {
			add("grants")
		}
	}
	return tags
}
