package localization

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediascout/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../docs/schema.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return NewRepo(db)
}

func TestUpsertAndBulkGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.LocalizedText{
		ItemID: "tmdb:movie/603", Locale: "de", Title: "Matrix", Synopsis: "Ein Hacker.",
	}))
	require.NoError(t, repo.Upsert(ctx, models.LocalizedText{
		ItemID: "tmdb:movie/603", Locale: "fr", Synopsis: "Un hacker.",
	}))
	require.NoError(t, repo.Upsert(ctx, models.LocalizedText{
		ItemID: "jikan:5114", Locale: "de", Synopsis: "Zwei Brüder.",
	}))

	got, err := repo.BulkGet(ctx, []string{"tmdb:movie/603", "jikan:5114"}, []string{"de", "fr"})
	require.NoError(t, err)

	require.Contains(t, got, "tmdb:movie/603")
	assert.Equal(t, "Matrix", got["tmdb:movie/603"]["de"].Title)
	assert.Equal(t, "Un hacker.", got["tmdb:movie/603"]["fr"].Synopsis)
	assert.Equal(t, "Zwei Brüder.", got["jikan:5114"]["de"].Synopsis)
}

func TestUpsertReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := models.LocalizedText{ItemID: "x:1", Locale: "de", Synopsis: "alt"}
	require.NoError(t, repo.Upsert(ctx, rec))
	rec.Synopsis = "neu"
	require.NoError(t, repo.Upsert(ctx, rec))

	got, err := repo.BulkGet(ctx, []string{"x:1"}, []string{"de"})
	require.NoError(t, err)
	assert.Equal(t, "neu", got["x:1"]["de"].Synopsis)
}

func TestUpsertRejectsMissingKeys(t *testing.T) {
	repo := newTestRepo(t)

	assert.Error(t, repo.Upsert(context.Background(), models.LocalizedText{Locale: "de"}))
	assert.Error(t, repo.Upsert(context.Background(), models.LocalizedText{ItemID: "x:1"}))
}

func TestBulkGetEmptyInput(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.BulkGet(context.Background(), nil, []string{"de"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.BulkGet(context.Background(), []string{"x:1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBulkGetMissingCombinationsAbsent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.LocalizedText{ItemID: "x:1", Locale: "de", Synopsis: "da"}))

	got, err := repo.BulkGet(ctx, []string{"x:1", "x:2"}, []string{"de", "pt-BR"})
	require.NoError(t, err)

	require.Contains(t, got, "x:1")
	assert.NotContains(t, got, "x:2")
	assert.NotContains(t, got["x:1"], "pt-BR")
}
