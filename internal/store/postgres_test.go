package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

var pgColumns = []string{"id", "kind", "owner_id", "status", "title", "data", "created_at", "updated_at"}

const testUUID = "0b9d7c3e-4f57-4a40-9a43-1a2b3c4d5e6f"

func TestPostgresStore_Migrate(t *testing.T) {
	t.Run("Should apply the embedded DDL", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		mockPool.ExpectExec("CREATE TABLE IF NOT EXISTS gestion_entidades").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))

		require.NoError(t, NewPostgres(mockPool).Migrate(context.Background()))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresStore_Create(t *testing.T) {
	t.Run("Should insert reserved keys as columns and the rest as jsonb", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		mockPool.ExpectExec("INSERT INTO gestion_entidades").
			WithArgs(pgxmock.AnyArg(), "emploi", "p1", "active", "Dev Go", `{"title":"Dev Go","type":"CDI"}`, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		rec, err := NewPostgres(mockPool).Create(context.Background(), catalog.Emploi, models.Record{
			"title":             "Dev Go",
			"type":              "CDI",
			models.KeyOwner:     "p1",
			models.KeyStatus:    models.EstadoActivo,
			models.KeyCreatedAt: "ignorado",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID())
		assert.Equal(t, "CDI", rec.String("type"))
		assert.NotEqual(t, "ignorado", rec.String(models.KeyCreatedAt))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresStore_Get(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Should decode the row into a record", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		rows := mockPool.NewRows(pgColumns).
			AddRow(testUUID, "emploi", "p1", "active", "Dev Go", []byte(`{"type":"CDI","candidatures":4}`), now, now)
		mockPool.ExpectQuery("SELECT (.+) FROM gestion_entidades WHERE kind = \\$1 AND id = \\$2").
			WithArgs("emploi", testUUID).
			WillReturnRows(rows)

		rec, err := NewPostgres(mockPool).Get(context.Background(), catalog.Emploi, testUUID)
		require.NoError(t, err)
		assert.Equal(t, testUUID, rec.ID())
		assert.Equal(t, "Dev Go", rec.String("title"))
		assert.Equal(t, 4, rec.Int("candidatures"))
		assert.Equal(t, "2025-03-01T10:00:00Z", rec.String(models.KeyCreatedAt))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return ErrNotFound when no row matches", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		mockPool.ExpectQuery("SELECT (.+) FROM gestion_entidades").
			WithArgs("emploi", testUUID).
			WillReturnError(pgx.ErrNoRows)

		_, err = NewPostgres(mockPool).Get(context.Background(), catalog.Emploi, testUUID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should not query for malformed ids", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		_, err = NewPostgres(mockPool).Get(context.Background(), catalog.Emploi, "42")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresStore_List(t *testing.T) {
	t.Run("Should filter, count and page in SQL", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		now := time.Now().UTC()

		mockPool.ExpectQuery("SELECT count\\(\\*\\) FROM gestion_entidades WHERE").
			WithArgs("emploi", "p1", "%go%", "active", "CDI").
			WillReturnRows(mockPool.NewRows([]string{"count"}).AddRow(int64(21)))
		mockPool.ExpectQuery("SELECT (.+) FROM gestion_entidades WHERE (.+) ORDER BY created_at DESC LIMIT 20 OFFSET 20").
			WithArgs("emploi", "p1", "%go%", "active", "CDI").
			WillReturnRows(mockPool.NewRows(pgColumns).
				AddRow(testUUID, "emploi", "p1", "active", "Dev Go", []byte(`{"type":"CDI"}`), now, now))

		items, total, err := NewPostgres(mockPool).List(context.Background(), catalog.Emploi, "p1", Query{
			Search:  "go",
			Filters: map[string]string{"type": "CDI", "status": "active", "secteur": "all"},
			Page:    2,
			Size:    20,
		})
		require.NoError(t, err)
		assert.Equal(t, 21, total)
		require.Len(t, items, 1)
		assert.Equal(t, "Dev Go", items[0].String("title"))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresStore_ListPastTheEnd(t *testing.T) {
	t.Run("Should skip the page query when the offset lies past the total", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		mockPool.ExpectQuery("SELECT count\\(\\*\\) FROM gestion_entidades WHERE").
			WithArgs("emploi", "p1").
			WillReturnRows(mockPool.NewRows([]string{"count"}).AddRow(int64(3)))

		items, total, err := NewPostgres(mockPool).List(context.Background(), catalog.Emploi, "p1", Query{
			Page: 4611686018427387904,
			Size: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.NotNil(t, items)
		assert.Empty(t, items)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresStore_Delete(t *testing.T) {
	t.Run("Should report ErrNotFound when nothing was deleted", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		mockPool.ExpectExec("DELETE FROM gestion_entidades").
			WithArgs("emploi", testUUID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = NewPostgres(mockPool).Delete(context.Background(), catalog.Emploi, testUUID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause(catalog.Emploi, "", ""))
	assert.Equal(t, "title ASC", orderClause(catalog.Emploi, "title", "asc"))
	assert.Equal(t, "data->>'dateLimite' DESC", orderClause(catalog.Emploi, "dateLimite", "desc"))
	assert.Equal(t, "created_at ASC", orderClause(catalog.Emploi, "1; DROP TABLE x", "asc"))
	assert.Equal(t, "NULLIF(data->>'nombrePostes', '')::numeric ASC NULLS LAST", orderClause(catalog.Emploi, "nombrePostes", "asc"))
	assert.Equal(t, "NULLIF(data->>'candidatures', '')::numeric DESC NULLS LAST", orderClause(catalog.Emploi, "candidatures", "desc"))
}
