package extract

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/grantwatch/harvester/internal/harvest"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func ruleName(rule harvest.Rule) uintptr {
	return reflect.ValueOf(rule).Pointer()
}

func TestResolveStripsWWW(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	fake := func(_ *goquery.Document, _ harvest.Source) []harvest.RawRecord {
		return []harvest.RawRecord{{Title: "fake"}}
	}
	r.Register("example.com", fake)

	require.Equal(t, ruleName(fake), ruleName(r.Resolve("example.com")))
	require.Equal(t, ruleName(fake), ruleName(r.Resolve("www.example.com")))
	require.Equal(t, ruleName(fake), ruleName(r.Resolve("WWW.Example.COM")))
}

func TestResolveUnregisteredReturnsFallback(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	rule := r.Resolve("unregistered.example")
	require.Equal(t, ruleName(harvest.Rule(Fallback)), ruleName(rule))
}

func TestResolveNoSuffixMatching(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	fake := func(_ *goquery.Document, _ harvest.Source) []harvest.RawRecord { return nil }
	r.Register("example.com", fake)

	// Subdomains are distinct hosts and must fall back.
	require.Equal(t, ruleName(harvest.Rule(Fallback)), ruleName(r.Resolve("sub.example.com")))
}

func TestDefaultRegistryCoversKnownSites(t *testing.T) {
	t.Parallel()

	r := Default()
	for _, host := range []string{
		"gurt.org.ua",
		"prostir.ua",
		"prozorro.gov.ua",
		"houseofeurope.org.ua",
		"euneighbourseast.eu",
		"business.diia.gov.ua",
	} {
		require.NotEqual(t, ruleName(harvest.Rule(Fallback)), ruleName(r.Resolve(host)), host)
	}
}

func TestInjectedFakeRuleRuns(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("fake.test", func(_ *goquery.Document, src harvest.Source) []harvest.RawRecord {
		return []harvest.RawRecord{{Title: "from " + src.ID}}
	})

	records := r.Resolve("fake.test")(mustDoc(t, "<html></html>"), harvest.Source{ID: "s1"})
	require.Len(t, records, 1)
	require.Equal(t, "from s1", records[0].Title)
}
