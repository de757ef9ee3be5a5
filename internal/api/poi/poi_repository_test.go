package poi

import (
	"context"
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

var poiCols = []string{"id", "title", "description", "image_url", "duration", "difficulty", "category", "created_at", "updated_at"}

func TestRepositoryList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	id := uuid.New()
	mock.ExpectQuery(`SELECT id, title, .* FROM pois WHERE LOWER\(category\) = LOWER\(\$1\) AND \(title ILIKE \$2 OR description ILIKE \$3 OR category ILIKE \$4\) ORDER BY seq LIMIT 10 OFFSET 5`).
		WithArgs("heritage", "%fort%", "%fort%", "%fort%").
		WillReturnRows(pgxmock.NewRows(poiCols).
			AddRow(id.String(), "Bassein Fort", "Ruined fort", "/assets/bassein.jpg", "3 hours", "Moderate", "Heritage", now, now))

	pois, err := NewRepositoryImpl(mock, testLogger()).List(context.Background(), types.POIFilter{
		Category: "heritage", Query: "fort", Limit: 10, Offset: 5,
	})
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, id, pois[0].ID)
	assert.Equal(t, "Bassein Fort", pois[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListEscapesWildcards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pattern := `%100\%\_off\\%`
	mock.ExpectQuery(`FROM pois WHERE \(title ILIKE \$1 OR description ILIKE \$2 OR category ILIKE \$3\) ORDER BY seq`).
		WithArgs(pattern, pattern, pattern).
		WillReturnRows(pgxmock.NewRows(poiCols))

	pois, err := NewRepositoryImpl(mock, testLogger()).List(context.Background(), types.POIFilter{Query: `100%_off\`})
	require.NoError(t, err)
	assert.Empty(t, pois)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListAllUsesCatalogOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, title, .* FROM pois ORDER BY seq$`).
		WillReturnRows(pgxmock.NewRows(poiCols))

	pois, err := NewRepositoryImpl(mock, testLogger()).ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, pois)
	assert.Empty(t, pois)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM pois WHERE id = \$1`).WithArgs(id.String()).WillReturnError(pgx.ErrNoRows)

	_, err = NewRepositoryImpl(mock, testLogger()).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRepositoryDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	gone, present := uuid.New(), uuid.New()
	mock.ExpectExec(`DELETE FROM pois WHERE id = \$1`).WithArgs(present.String()).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM pois WHERE id = \$1`).WithArgs(gone.String()).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewRepositoryImpl(mock, testLogger())
	assert.NoError(t, repo.Delete(context.Background(), present))
	assert.ErrorIs(t, repo.Delete(context.Background(), gone), types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
