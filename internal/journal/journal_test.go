package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xpand/internal/event"
)

var epoch = time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for range 3 {
		j, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, j.Close())
	}
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	j := openTest(t)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk, version int
	require.NoError(t, j.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, j.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, fk)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	j.Close()

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestOpen_Memory(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.StartSession(context.Background(), Session{ID: "s", StartedAt: epoch}))
}

func TestRecordAndRead(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)
	require.NoError(t, j.StartSession(ctx, Session{ID: "s1", Label: "test", StartedAt: epoch, StoreMatches: 2, StoreHash: "abc"}))

	key := event.New(6, event.Keyboard{Key: event.KeySpace, Value: " ", Status: event.Pressed})
	results := []event.Event{
		event.New(6, event.TriggerCompensation{Trigger: ":date", RightSeparator: " "}),
		event.New(6, event.Noop{}),
		event.New(6, event.TextInject{Text: "2024-03-05 "}),
		event.New(6, event.MatchInjected{}),
	}
	require.NoError(t, j.Record(ctx, "s1", 1, event.New(1, event.Keyboard{Key: event.KeyOther, Value: ":", Status: event.Pressed}), nil))
	require.NoError(t, j.Record(ctx, "s1", 2, key, results))

	entries, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Outputs)
	assert.Equal(t, key, entries[1].Input)
	assert.Equal(t, []event.Event{results[0], results[2], results[3]}, entries[1].Outputs)

	s, err := j.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Session{ID: "s1", Label: "test", StartedAt: epoch, StoreMatches: 2, StoreHash: "abc", Inputs: 2}, s)
}

func TestRecord_Idempotent(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)
	require.NoError(t, j.StartSession(ctx, Session{ID: "s1", StartedAt: epoch}))
	require.NoError(t, j.StartSession(ctx, Session{ID: "s1", Label: "ignored", StartedAt: epoch}))

	in := event.New(1, event.HotKey{ID: 1})
	out := []event.Event{event.New(1, event.TextInject{Text: "x"})}
	require.NoError(t, j.Record(ctx, "s1", 1, in, out))
	require.NoError(t, j.Record(ctx, "s1", 1, in, out))

	entries, err := j.Entries(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Outputs, 1)

	s, err := j.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, s.Label)
}

func TestRecord_UnknownSessionFails(t *testing.T) {
	j := openTest(t)
	err := j.Record(context.Background(), "missing", 1, event.New(1, event.SearchRequested{}), nil)
	assert.Error(t, err, "foreign keys are enforced")
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)

	_, err := j.LatestSession(ctx)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = j.Entries(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, j.StartSession(ctx, Session{ID: "b", StartedAt: epoch.Add(time.Minute)}))
	require.NoError(t, j.StartSession(ctx, Session{ID: "a", StartedAt: epoch}))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)

	latest, err := j.LatestSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)
}

func TestGenerators(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	g := NewFixedGenerator("one", "two")
	assert.Equal(t, "one", g.Generate())
	assert.Equal(t, "two", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
