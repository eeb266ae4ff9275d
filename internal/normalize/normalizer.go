// Package normalize converts raw extracted records into canonical grants.
package normalize

import (
	"strings"

	"github.com/grantwatch/harvester/internal/harvest"
	"github.com/grantwatch/harvester/internal/hash/identity"
)

// Normalizer fills defaults and produces storage-ready grants.
type Normalizer struct {
	defaultCurrency string
	clock           harvest.Clock
}

// New builds a Normalizer. defaultCurrency applies when a record carries an
// amount but no extracted currency and the source has no currency hint.
func New(defaultCurrency string, clock harvest.Clock) *Normalizer {
	if defaultCurrency == "" {
		defaultCurrency = "UAH"
	}
	return &Normalizer{defaultCurrency: defaultCurrency, clock: clock}
}

// Normalize trims, parses the deadline, classifies the type, merges tags and
// applies parser-hint overrides. It never fails: bad fields degrade to zero
// values.
func (n *Normalizer) Normalize(raw harvest.RawRecord, src harvest.Source) harvest.Grant {
	now := n.clock.Now()
	grant := harvest.Grant{
		Title:       strings.TrimSpace(raw.Title),
		URL:         strings.TrimSpace(raw.URL),
		Description: strings.TrimSpace(raw.Description),
		Deadline:    ParseDeadline(raw.Deadline),
		Amount:      raw.Amount,
		Currency:    strings.TrimSpace(raw.Currency),
		Type:        raw.TypeHint,
		SourceID:    src.ID,
		SourceURL:   src.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if grant.Type == "" {
		classifiable := grant.Title + " " + grant.Description
		if harvest.MatchesFundingKeyword(classifiable) {
			grant.Type = harvest.ClassifyType(classifiable)
		} else {
			grant.Type = harvest.TypeOther
		}
	}

	if grant.Amount != nil && grant.Currency == "" {
		grant.Currency = n.defaultCurrency
	}

	grant.Tags = mergeTags(raw.Tags, harvest.KeywordTags(grant.Title+" "+grant.Description))

	applyHints(&grant, src)

	grant.ContentHash = identity.Digest(grant.Title, grant.URL, grant.Deadline, grant.SourceURL)
	return grant
}

// applyHints lets per-source operator overrides win over extraction output.
func applyHints(grant *harvest.Grant, src harvest.Source) {
	if cur := src.Hint(harvest.HintCurrency); cur != "" {
		grant.Currency = cur
	}
	if typ := src.Hint(harvest.HintType); typ != "" {
		grant.Type = harvest.GrantType(typ)
	}
}

func mergeTags(extracted, derived []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tag := range append(append([]string{}, extracted...), derived...) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}
