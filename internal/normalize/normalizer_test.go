package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grantwatch/harvester/internal/harvest"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testSource() harvest.Source {
	return harvest.Source{
		ID:  "src-1",
		URL: "https://gurt.org.ua/news/grants/",
	}
}

func testNormalizer() *Normalizer {
	return New("UAH", fixedClock{t: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)})
}

func TestNormalizeTrimsAndHashes(t *testing.T) {
	t.Parallel()

	n := testNormalizer()
	grant := n.Normalize(harvest.RawRecord{
		Title:       "  Грантовий конкурс для ГО  ",
		URL:         " https://gurt.org.ua/news/grants/123/ ",
		Description: " Підтримка громадських ініціатив ",
		Deadline:    "27.01.2026 17:00",
	}, testSource())

	require.Equal(t, "Грантовий конкурс для ГО", grant.Title)
	require.Equal(t, "https://gurt.org.ua/news/grants/123/", grant.URL)
	require.Equal(t, harvest.TypeGrants, grant.Type)
	require.NotNil(t, grant.Deadline)
	require.Equal(t, "2026-01-27T17:00:00Z", grant.Deadline.Format(time.RFC3339))
	require.NotEmpty(t, grant.ContentHash)
	require.Equal(t, "src-1", grant.SourceID)
	require.Equal(t, "https://gurt.org.ua/news/grants/", grant.SourceURL)
}

func TestNormalizeCurrencyDefaultOnlyWithAmount(t *testing.T) {
	t.Parallel()

	n := testNormalizer()
	amount := 500000.0

	withAmount := n.Normalize(harvest.RawRecord{Title: "Грант", Amount: &amount}, testSource())
	require.Equal(t, "UAH", withAmount.Currency)

	withoutAmount := n.Normalize(harvest.RawRecord{Title: "Грант"}, testSource())
	require.Empty(t, withoutAmount.Currency)
}

func TestNormalizeParserHintOverrides(t *testing.T) {
	t.Parallel()

	n := testNormalizer()
	src := testSource()
	src.ParserHint = map[string]string{
		harvest.HintCurrency: "EUR",
		harvest.HintType:     string(harvest.TypeTenders),
	}
	amount := 10000.0

	grant := n.Normalize(harvest.RawRecord{Title: "Грант", Amount: &amount}, src)
	require.Equal(t, "EUR", grant.Currency)
	require.Equal(t, harvest.TypeTenders, grant.Type)
}

func TestNormalizeTypeFallsBackToOther(t *testing.T) {
	t.Parallel()

	n := testNormalizer()
	grant := n.Normalize(harvest.RawRecord{Title: "Оголошення без ключових слів"}, testSource())
	require.Equal(t, harvest.TypeOther, grant.Type)
}

func TestNormalizeMergesTagsCaseInsensitive(t *testing.T) {
	t.Parallel()

	n := testNormalizer()
	grant := n.Normalize(harvest.RawRecord{
		Title: "Grant competition",
		Tags:  []string{"Grants", "culture"},
	}, testSource())
	require.Equal(t, []string{"Grants", "culture"}, grant.Tags)
}
