package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/commonid/internal/clock"
)

func openTemp(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 3; i++ {
		l, err := Open(path)
		require.NoError(t, err, "iteration %d", i)

		var version int
		require.NoError(t, l.db.QueryRow("PRAGMA user_version").Scan(&version))
		assert.Equal(t, currentSchemaVersion, version)
		require.NoError(t, l.Close())
	}
}

func TestRecordAssignsIDAndTime(t *testing.T) {
	clk := clock.Date(2024, time.March, 15)
	l := openTemp(t, WithClock(clk))

	run, err := l.Record(context.Background(), Run{
		Region:          "TST",
		ConfigSignature: "6bb046b73f7c312ba4b02f12ce6709a2",
		Document:        "people",
		Rows:            10,
		ErrorRows:       2,
		OutputFile:      "people-ERRORS.csv",
	})
	require.NoError(t, err)

	id, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, clk.Now(), run.RecordedAt)

	runs, err := l.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])
}

func TestListNewestFirst(t *testing.T) {
	clk := clock.Date(2024, time.March, 15)
	l := openTemp(t, WithClock(clk))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := l.Record(ctx, Run{Region: "TST", Document: name, Valid: true})
		require.NoError(t, err)
		clk.Advance(time.Minute)
	}

	runs, err := l.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].Document)
	assert.Equal(t, "b", runs[1].Document)
	assert.True(t, runs[0].Valid)
	assert.False(t, runs[0].MappingOnly)
}

func TestRecordRejectsDuplicateID(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	_, err := l.Record(ctx, Run{ID: "fixed", Region: "TST", Document: "x"})
	require.NoError(t, err)
	_, err = l.Record(ctx, Run{ID: "fixed", Region: "TST", Document: "x"})
	assert.Error(t, err)
}
