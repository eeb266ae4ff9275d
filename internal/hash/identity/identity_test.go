package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDigestDeterministic(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 1, 27, 17, 0, 0, 0, time.UTC)
	a := Digest("Грант для ГО", "https://example.org/call", &due, "https://example.org")
	b := Digest("Грант для ГО", "https://example.org/call", &due, "https://example.org")
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestDigestCaseInsensitive(t *testing.T) {
	t.Parallel()

	a := Digest("Culture Grant", "https://example.org/CALL", nil, "https://example.org")
	b := Digest("culture grant", "https://example.org/call", nil, "https://example.org")
	require.Equal(t, a, b)
}

func TestDigestIgnoresNothingElse(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 1, 27, 17, 0, 0, 0, time.UTC)
	withDue := Digest("Culture Grant", "https://example.org/call", &due, "https://example.org")
	without := Digest("Culture Grant", "https://example.org/call", nil, "https://example.org")
	require.NotEqual(t, withDue, without)
}
