package departures

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSQLPersister(t *testing.T) *SQLPersister {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	p := NewSQLPersister(zaptest.NewLogger(t), db)
	require.NoError(t, p.Setup(context.Background()))
	return p
}

func TestSQLPersisterRoundTrip(t *testing.T) {
	p := newTestSQLPersister(t)
	ctx := context.Background()

	trips := []Trip{
		tripAt("B", "S2", "T2", 30),
		tripAt("A", "S1", "T1", 10),
		tripAt("A", "S1", "", 20),
	}
	require.NoError(t, p.Persist(ctx, trips))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(trips))
	for idx := range trips {
		assert.Equal(t, trips[idx].RouteName, loaded[idx].RouteName)
		assert.Equal(t, trips[idx].StopName, loaded[idx].StopName)
		assert.Equal(t, trips[idx].Terminus, loaded[idx].Terminus)
		assert.True(t, trips[idx].StopTime.Equal(loaded[idx].StopTime))
	}
}

func TestSQLPersisterReplacesPreviousTrips(t *testing.T) {
	p := newTestSQLPersister(t)
	ctx := context.Background()

	require.NoError(t, p.Persist(ctx, []Trip{tripAt("A", "S1", "T1", 10), tripAt("A", "S1", "T1", 20)}))
	require.NoError(t, p.Persist(ctx, []Trip{tripAt("C", "S3", "T3", 5)}))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "C", loaded[0].RouteName)

	require.NoError(t, p.Persist(ctx, nil))
	loaded, err = p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestInMemoryPersisterCopies(t *testing.T) {
	p := NewInMemoryPersister()
	ctx := context.Background()

	trips := []Trip{tripAt("A", "S1", "T1", 10)}
	require.NoError(t, p.Persist(ctx, trips))
	trips[0].RouteName = "changed"

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", loaded[0].RouteName)
}
