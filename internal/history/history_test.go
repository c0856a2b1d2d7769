package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dshills/cfrscore/internal/schema"
	"github.com/dshills/cfrscore/internal/scoring"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db")
	s, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func result(doc string, score int) *schema.Result {
	ev := scoring.Fallback()
	ev.OverallScore = score
	ev.OverallRating = scoring.Label(score)
	return &schema.Result{
		Document:    doc,
		Heading:     "Ministry of " + doc + " Department",
		Summary:     []string{"One line."},
		Suggestions: []string{"Add baselines."},
		Evaluation:  ev,
		Meta:        schema.Meta{Tool: "cfrscore", Profile: "cfr", Model: "mock", DocHash: "abc123"},
	}
}

func TestSaveGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	res := result("Power", 84)
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	id, err := s.Save(ctx, res, when)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)
	require.True(t, got.CreatedAt.Equal(when))
	require.Equal(t, "Power", got.Document)
	require.Equal(t, "abc123", got.DocHash)
	require.Equal(t, 84, got.Score)
	require.Equal(t, schema.RatingGood, got.Rating)
	require.Equal(t, res, got.Result)
}

func TestGet_NotFound(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, doc := range []string{"Health", "Power", "Water"} {
		_, err := s.Save(ctx, result(doc, 70+i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Water", all[0].Document)
	require.Equal(t, "Health", all[2].Document)
	require.Nil(t, all[0].Result)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
}

func TestSave_Nil(t *testing.T) {
	s := openTemp(t)
	_, err := s.Save(context.Background(), nil, time.Time{})
	require.Error(t, err)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("mysql"), "")
	require.ErrorContains(t, err, "unsupported driver")
}

func TestOpen_Reopen(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	s, err := Open(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	_, err = s.Save(ctx, result("Power", 90), time.Time{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer s2.Close()
	list, err := s2.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	require.Equal(t, "WHERE a = $1 AND b = $2", pg.rebind("WHERE a = ? AND b = ?"))
	lite := &Store{driver: DriverSQLite}
	require.Equal(t, "WHERE a = ?", lite.rebind("WHERE a = ?"))
}

func TestDefaultDSN(t *testing.T) {
	require.Equal(t, DefaultSQLiteDSN, DefaultDSN(DriverSQLite))
	require.Equal(t, DefaultPostgresDSN, DefaultDSN(DriverPostgres))
	require.Contains(t, DefaultDSN(DriverPostgres), "postgres://")
	require.Empty(t, DefaultDSN("mysql"))
}
