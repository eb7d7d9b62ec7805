package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 2 * time.Second

type Checker struct {
	db *pgxpool.Pool
}

type Status struct {
	Status   string   `json:"status"`
	Database DBStatus `json:"database"`
}

type DBStatus struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewChecker(db *pgxpool.Pool) *Checker {
	return &Checker{db: db}
}

// Check pings the database and rolls its state up into the overall status.
func (c *Checker) Check() Status {
	db := c.checkDatabase()

	status := "healthy"
	if db.Status != "healthy" {
		status = "unhealthy"
	}
	return Status{Status: status, Database: db}
}

func (c *Checker) checkDatabase() DBStatus {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	start := time.Now()
	err := c.db.Ping(ctx)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return DBStatus{Status: "unhealthy", ResponseTime: elapsed}
	}
	return DBStatus{Status: "healthy", ResponseTime: elapsed}
}
