package objectstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type doc struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Rank  int    `json:"rank"`
}

func testSchemas() []Schema {
	return []Schema{
		{
			Name: "things",
			Key:  "id",
			Indices: []Index{
				{Name: "owner", Field: "owner"},
			},
		},
		{Name: "other", Key: "id"},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s, err := Open(filepath.Join(t.TempDir(), "store.db"), testSchemas(), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func decodeAll(t *testing.T, raw []json.RawMessage) []doc {
	t.Helper()
	out := make([]doc, 0, len(raw))
	for _, r := range raw {
		var d doc
		require.NoError(t, json.Unmarshal(r, &d))
		out = append(out, d)
	}
	return out
}

func TestAddAndGetByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "a", Owner: "u1", Rank: 1}))

	raw, err := s.GetByID(ctx, "things", "a")
	require.NoError(t, err)
	var got doc
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, doc{ID: "a", Owner: "u1", Rank: 1}, got)

	_, err = s.GetByID(ctx, "things", "missing")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestAddDuplicateKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "a", Owner: "u1"}))
	err := s.Add(ctx, "things", doc{ID: "a", Owner: "u2"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// the failed add must not have clobbered the original
	raw, err := s.GetByID(ctx, "things", "a")
	require.NoError(t, err)
	var got doc
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "u1", got.Owner)
}

func TestPutUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "things", doc{ID: "a", Owner: "u1", Rank: 1}))
	require.NoError(t, s.Put(ctx, "things", doc{ID: "a", Owner: "u1", Rank: 2}))

	raw, err := s.GetByID(ctx, "things", "a")
	require.NoError(t, err)
	var got doc
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2, got.Rank)

	n, err := s.Count(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetByIndex(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "a", Owner: "u1"}))
	require.NoError(t, s.Add(ctx, "things", doc{ID: "b", Owner: "u2"}))
	require.NoError(t, s.Add(ctx, "things", doc{ID: "c", Owner: "u1"}))

	raw, err := s.GetByIndex(ctx, "things", "owner", "u1")
	require.NoError(t, err)
	got := decodeAll(t, raw)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestQueryPredicateAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "a", Owner: "u1", Rank: 3}))
	require.NoError(t, s.Add(ctx, "things", doc{ID: "b", Owner: "u1", Rank: 1}))
	require.NoError(t, s.Add(ctx, "things", doc{ID: "c", Owner: "u2", Rank: 2}))

	onlyU1 := func(raw json.RawMessage) bool {
		var d doc
		if err := json.Unmarshal(raw, &d); err != nil {
			return false
		}
		return d.Owner == "u1"
	}

	raw, err := s.Query(ctx, "things", onlyU1, &Order{Field: "rank", Desc: true})
	require.NoError(t, err)
	got := decodeAll(t, raw)
	require.Len(t, got, 2)
	assert.Equal(t, []doc{{ID: "a", Owner: "u1", Rank: 3}, {ID: "b", Owner: "u1", Rank: 1}}, got)
}

func TestDeleteAndClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "a", Owner: "u1"}))
	require.NoError(t, s.Add(ctx, "things", doc{ID: "b", Owner: "u1"}))

	require.NoError(t, s.Delete(ctx, "things", "a"))
	require.NoError(t, s.Delete(ctx, "things", "a")) // absent key is not an error

	n, err := s.Count(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Clear(ctx, "things"))
	n, err = s.Count(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUnknownCollection(t *testing.T) {
	s := openTestStore(t)
	err := s.Add(context.Background(), "nope", doc{ID: "a"})
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "a", Owner: "u1", Rank: 1}))
	require.NoError(t, s.Add(ctx, "things", doc{ID: "b", Owner: "u2", Rank: 2}))
	require.NoError(t, s.Add(ctx, "other", doc{ID: "x", Owner: "u1"}))

	dump, err := s.Export(ctx)
	require.NoError(t, err)

	fresh := openTestStore(t)
	require.NoError(t, fresh.Import(ctx, dump))

	for _, col := range []string{"things", "other"} {
		want, err := s.GetAll(ctx, col)
		require.NoError(t, err)
		got, err := fresh.GetAll(ctx, col)
		require.NoError(t, err)
		assert.Equal(t, decodeAll(t, want), decodeAll(t, got), col)
	}
}

func TestImportOverwritesAndIgnoresUnknown(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "old", Owner: "u1"}))

	payload := `{
		"things": [{"id": "new", "owner": "u2", "rank": 9}],
		"from_the_future": [{"id": "ignored"}]
	}`
	require.NoError(t, s.Import(ctx, []byte(payload)))

	raw, err := s.GetAll(ctx, "things")
	require.NoError(t, err)
	got := decodeAll(t, raw)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestImportMalformedLeavesStoreUntouched(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "things", doc{ID: "keep", Owner: "u1"}))

	for _, payload := range []string{
		`not json at all`,
		`{"things": "not an array"}`,
		`{"things": [{"owner": "missing key field"}]}`,
	} {
		err := s.Import(ctx, []byte(payload))
		require.Error(t, err, payload)

		raw, err := s.GetAll(ctx, "things")
		require.NoError(t, err)
		got := decodeAll(t, raw)
		require.Len(t, got, 1)
		assert.Equal(t, "keep", got[0].ID)
	}
}
