// Package extract hosts the extraction-rule registry: per-site rules keyed by
// hostname plus a generic keyword-driven fallback rule.
package extract

import (
	"strings"
	"sync"

	"github.com/grantwatch/harvester/internal/harvest"
)

// Registry maps hostnames to extraction rules. Matching is exact after
// stripping a leading "www."; unknown hostnames get the fallback rule.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]harvest.Rule
	fallback harvest.Rule
}

// NewRegistry creates an empty registry whose fallback is the generic
// keyword rule.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]harvest.Rule),
		fallback: Fallback,
	}
}

// Default returns a registry preloaded with all site-specific rules.
func Default() *Registry {
	r := NewRegistry()
	r.Register("gurt.org.ua", GurtRule)
	r.Register("prostir.ua", ProstirRule)
	r.Register("prozorro.gov.ua", ProzorroRule)
	r.Register("houseofeurope.org.ua", HouseOfEuropeRule)
	r.Register("euneighbourseast.eu", EUNeighboursRule)
	r.Register("business.diia.gov.ua", DiiaBusinessRule)
	return r
}

// Register binds a rule to a hostname.
func (r *Registry) Register(hostname string, rule harvest.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[normalizeHost(hostname)] = rule
}

// Resolve returns the rule for hostname, or the fallback when none is
// registered.
func (r *Registry) Resolve(hostname string) harvest.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rule, ok := r.rules[normalizeHost(hostname)]; ok {
		return rule
	}
	return r.fallback
}

func normalizeHost(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	return strings.TrimPrefix(host, "www.")
}
