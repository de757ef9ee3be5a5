package profiles

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

var readOnlySnapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

func TestListItinerarySummaries(t *testing.T) {
	userID := uuid.New()
	created := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "title", "days", "data", "created_at"}

	t.Run("counts locations inside one snapshot", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		newer, older := uuid.New(), uuid.New()
		mock.ExpectBeginTx(readOnlySnapshot)
		mock.ExpectQuery(`SELECT id, title, days, data, created_at FROM itineraries WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs(userID.String()).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(newer.String(), "Food crawl", 2,
					json.RawMessage(`[{"day":1,"title":"a","pois":[{"name":"x"},{"name":"y"}]},{"day":2,"title":"b","pois":[{"name":"z"}]}]`),
					created.Add(24*time.Hour)).
				AddRow(older.String(), "Forts", 1, json.RawMessage(`[{"day":1,"title":"a","pois":[]}]`), created))
		mock.ExpectCommit()

		summaries, err := NewRepositoryImpl(mock, testLogger()).ListItinerarySummaries(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, []types.ItinerarySummary{
			{ID: newer, Title: "Food crawl", Date: "Mar 5, 2025", Days: 2, Locations: 3},
			{ID: older, Title: "Forts", Date: "Mar 4, 2025", Days: 1, Locations: 0},
		}, summaries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("undecodable payload rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBeginTx(readOnlySnapshot)
		mock.ExpectQuery(`FROM itineraries WHERE user_id = \$1`).
			WithArgs(userID.String()).
			WillReturnRows(pgxmock.NewRows(cols).AddRow(uuid.NewString(), "Broken", 1, json.RawMessage(`{"not":"a list"}`), created))
		mock.ExpectRollback()

		_, err = NewRepositoryImpl(mock, testLogger()).ListItinerarySummaries(context.Background(), userID)
		assert.ErrorIs(t, err, types.ErrStorage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetItinerary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, owner := uuid.New(), uuid.New()
	payload := json.RawMessage(`[{"day":1,"title":"a","pois":[]}]`)
	mock.ExpectQuery(`SELECT id, user_id, title, days, data, created_at FROM itineraries WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "days", "data", "created_at"}).
			AddRow(id.String(), owner.String(), "Forts", 1, payload, time.Now()))
	missing := uuid.New()
	mock.ExpectQuery(`FROM itineraries WHERE id = \$1`).WithArgs(missing.String()).WillReturnError(pgx.ErrNoRows)

	repo := NewRepositoryImpl(mock, testLogger())
	it, err := repo.GetItinerary(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, owner, it.UserID)
	assert.JSONEq(t, string(payload), string(it.Data))

	_, err = repo.GetItinerary(context.Background(), missing)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID, visitID := uuid.New(), uuid.New()
	visited := time.Date(2025, time.January, 12, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT v.id, v.visited_at, COALESCE\(p.title, 'Unknown'\), COALESCE\(p.category, 'Unknown'\) FROM visit_history v LEFT JOIN pois p ON p.id = v.poi_id WHERE v.user_id = \$1 ORDER BY v.visited_at DESC`).
		WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "visited_at", "title", "category"}).
			AddRow(visitID.String(), visited, "Unknown", "Unknown"))

	rows, err := NewRepositoryImpl(mock, testLogger()).ListHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.HistoryRow{ID: visitID, VisitedAt: visited, POITitle: "Unknown", Category: "Unknown"}, rows[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM itineraries WHERE user_id = \$1`).WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM visit_history WHERE user_id = \$1`).WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewRepositoryImpl(mock, testLogger())
	trips, err := repo.CountItineraries(context.Background(), userID)
	require.NoError(t, err)
	visits, err := repo.CountVisits(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, trips)
	assert.Equal(t, 7, visits)
	assert.NoError(t, mock.ExpectationsWereMet())
}
