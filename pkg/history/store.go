package history

import (
	"errors"
	"time"

	"github.com/timekit-io/timekit/pkg/timespan"
)

var ErrRecordNotFound = errors.New("record not found")

// Record is one completed measurement run.
type Record struct {
	ID        string
	Command   string
	ExitCode  int
	Wall      timespan.Duration
	Monotonic timespan.Duration
	StartedAt time.Time
	CreatedAt time.Time
}

// Drift is the wall-minus-monotonic difference over the run. A clock that
// keeps perfect pace reads zero.
func (r *Record) Drift() timespan.Duration {
	return r.Wall.SaturatingSub(r.Monotonic)
}

// Store defines the interface for measurement persistence.
// Both the in-memory and SQLite stores implement this interface.
type Store interface {
	// Record operations
	SaveRecord(record *Record) error
	GetRecord(id string) (*Record, error)
	ListRecords(limit int) ([]*Record, error)
	DeleteRecord(id string) error
	Clear() (int, error)

	// Lifecycle
	Close() error
	HealthCheck() error
}
