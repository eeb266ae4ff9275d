package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/grantwatch/harvester/internal/harvest"
)

func TestMarkProcessingWinsClaim(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSourceStore(mock)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE sources SET status = 'processing'").
		WithArgs("src-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	claimed, err := store.MarkProcessing(context.Background(), "src-1")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessingLosesClaim(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSourceStore(mock)
	require.NoError(t, err)

	// The conditional update touches zero rows when another run holds the
	// source.
	mock.ExpectExec("UPDATE sources SET status = 'processing'").
		WithArgs("src-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	claimed, err := store.MarkProcessing(context.Background(), "src-1")
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestMarkSuccessClearsError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSourceStore(mock)
	require.NoError(t, err)

	fetchedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE sources SET status = 'success'").
		WithArgs("src-1", fetchedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.MarkSuccess(context.Background(), "src-1", fetchedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkErrorRecordsMessage(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSourceStore(mock)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE sources SET status = 'error'").
		WithArgs("src-1", "fetch timed out").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.MarkError(context.Background(), "src-1", "fetch timed out"))
}

func TestListEligibleScansSources(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSourceStore(mock)
	require.NoError(t, err)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "url", "parser_hint", "status", "last_fetched_at",
		"last_error_message", "created_at", "updated_at",
	}).
		AddRow("src-1", "https://gurt.org.ua/news/grants/", []byte(`{"currency":"UAH"}`),
			"pending", (*time.Time)(nil), "", created, created).
		AddRow("src-2", "https://prozorro.gov.ua/search", []byte(nil),
			"error", (*time.Time)(nil), "boom", created, created)

	mock.ExpectQuery("SELECT (.+) FROM sources WHERE status <> 'processing'").
		WillReturnRows(rows)

	sources, err := store.ListEligible(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	require.Equal(t, "UAH", sources[0].Hint(harvest.HintCurrency))
	require.Equal(t, harvest.SourceStatusError, sources[1].Status)
	require.Equal(t, "boom", sources[1].LastError)
}

func TestGetSourceByID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSourceStore(mock)
	require.NoError(t, err)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "url", "parser_hint", "status", "last_fetched_at",
		"last_error_message", "created_at", "updated_at",
	}).AddRow("src-1", "https://gurt.org.ua/news/grants/", []byte(nil),
		"success", (*time.Time)(nil), "", created, created)

	mock.ExpectQuery("SELECT (.+) FROM sources WHERE id =").
		WithArgs("src-1").
		WillReturnRows(rows)

	src, err := store.GetSource(context.Background(), "src-1")
	require.NoError(t, err)
	require.Equal(t, "src-1", src.ID)
	require.Equal(t, harvest.SourceStatusSuccess, src.Status)
}
