package history

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timekit-io/timekit/pkg/timespan"
)

func newRecord(command string, createdAt time.Time) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Command:   command,
		ExitCode:  0,
		Wall:      timespan.Milliseconds(1500),
		Monotonic: timespan.Milliseconds(1499),
		StartedAt: createdAt.Add(-2 * time.Second),
		CreatedAt: createdAt,
	}
}

// storeUnderTest runs the shared Store contract tests against an implementation.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	first := newRecord("sleep 1", now.Add(-2*time.Minute))
	second := newRecord("make build", now.Add(-1*time.Minute))
	third := newRecord("go vet ./...", now)

	for _, r := range []*Record{first, second, third} {
		require.NoError(t, store.SaveRecord(r))
	}

	got, err := store.GetRecord(second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Command, got.Command)
	assert.Equal(t, second.Wall, got.Wall)
	assert.Equal(t, second.Monotonic, got.Monotonic)

	_, err = store.GetRecord("missing-id")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// Newest first
	records, err := store.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, third.ID, records[0].ID)
	assert.Equal(t, first.ID, records[2].ID)

	records, err = store.ListRecords(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, third.ID, records[0].ID)

	require.NoError(t, store.DeleteRecord(first.ID))
	assert.ErrorIs(t, store.DeleteRecord(first.ID), ErrRecordNotFound)

	dropped, err := store.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	records, err = store.ListRecords(0)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.NoError(t, store.HealthCheck())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeUnderTest(t, store)
}

func TestSQLiteStore(t *testing.T) {
	tmpDB := "/tmp/test_timekit_history.db"
	defer os.Remove(tmpDB)
	defer os.Remove(tmpDB + "-shm")
	defer os.Remove(tmpDB + "-wal")

	store, err := NewSQLiteStore(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	storeUnderTest(t, store)
}

func TestSQLiteConcurrentSaves(t *testing.T) {
	tmpDB := "/tmp/test_timekit_history_concurrent.db"
	defer os.Remove(tmpDB)
	defer os.Remove(tmpDB + "-shm")
	defer os.Remove(tmpDB + "-wal")

	store, err := NewSQLiteStore(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	numRecords := 20
	var wg sync.WaitGroup
	errs := make(chan error, numRecords)

	for i := 0; i < numRecords; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			r := newRecord(fmt.Sprintf("job-%d", idx), time.Now())
			if err := store.SaveRecord(r); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent save failed: %v", err)
	}

	records, err := store.ListRecords(0)
	require.NoError(t, err)
	assert.Len(t, records, numRecords)
}

func TestRecordDrift(t *testing.T) {
	r := newRecord("sleep 1", time.Now())
	assert.Equal(t, timespan.Milliseconds(1), r.Drift())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	r := newRecord("sleep 1", time.Now())
	require.NoError(t, store.SaveRecord(r))

	got, err := store.GetRecord(r.ID)
	require.NoError(t, err)
	got.Command = "mutated"

	again, err := store.GetRecord(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "sleep 1", again.Command)
}
