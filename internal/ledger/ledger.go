// Package ledger implements the durable vote store and room directory.
//
// All stores guarantee that CastVote counts each (room, track, voter)
// triple exactly once under concurrent callers:
//   - Memory serializes writers with a mutex.
//   - SQLite and Postgres insert the voter row with ON CONFLICT DO NOTHING
//     and only increment the tally when that insert took effect, inside
//     one transaction.
package ledger

import (
	"context"
	"fmt"

	"github.com/dkeye/Tracklist/internal/core"
)

// Store is a ledger backend that also keeps the room directory.
type Store interface {
	core.Ledger
	core.RoomDirectory
	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects the configured driver. It does not migrate.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("ledger.Open: unknown driver %q", driver)
	}
}
