package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDeadlineDottedGrammar(t *testing.T) {
	t.Parallel()

	got := ParseDeadline("27.01.2026 17:00")
	require.NotNil(t, got)
	require.Equal(t, "2026-01-27T17:00:00Z", got.Format(time.RFC3339))
}

func TestParseDeadlineDateOnly(t *testing.T) {
	t.Parallel()

	got := ParseDeadline("15.03.2026")
	require.NotNil(t, got)
	require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseDeadlineUkrainianMonth(t *testing.T) {
	t.Parallel()

	got := ParseDeadline("27 січня 2026")
	require.NotNil(t, got)
	require.Equal(t, time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), *got)

	got = ParseDeadline("до 5 березня 2026 року, 18:00")
	require.NotNil(t, got)
	require.Equal(t, time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC), *got)
}

func TestParseDeadlineISO(t *testing.T) {
	t.Parallel()

	got := ParseDeadline("2026-01-27")
	require.NotNil(t, got)
	require.Equal(t, time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseDeadlineUnparsable(t *testing.T) {
	t.Parallel()

	require.Nil(t, ParseDeadline(""))
	require.Nil(t, ParseDeadline("   "))
	require.Nil(t, ParseDeadline("TBD"))
	require.Nil(t, ParseDeadline("постійно діючий"))
}
