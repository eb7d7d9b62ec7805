package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ColumnCache memoizes the column set of one table so filter builders can
// skip columns a legacy database does not have yet, without hitting
// information_schema on every request. Lookups refresh after the TTL;
// a failed refresh degrades to an empty set rather than an error.
type ColumnCache struct {
	db    *pgxpool.Pool
	table string
	ttl   time.Duration

	mu        sync.Mutex
	columns   map[string]bool
	fetchedAt time.Time
}

func NewColumnCache(db *pgxpool.Pool, table string, ttl time.Duration) *ColumnCache {
	return &ColumnCache{db: db, table: table, ttl: ttl}
}

// Columns returns the cached column set, refreshing it when stale.
func (c *ColumnCache) Columns(ctx context.Context) map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.columns != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.columns
	}

	rows, err := c.db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = $1`,
		c.table,
	)
	if err != nil {
		return map[string]bool{}
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return map[string]bool{}
		}
		cols[name] = true
	}
	if rows.Err() != nil {
		return map[string]bool{}
	}

	c.columns = cols
	c.fetchedAt = time.Now()
	return cols
}

// Has reports whether the table currently has the named column.
func (c *ColumnCache) Has(ctx context.Context, column string) bool {
	return c.Columns(ctx)[column]
}
