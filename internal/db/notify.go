package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Notifier publishes assessment IDs on a PostgreSQL NOTIFY channel so an
// on-call dashboard can LISTEN for emergencies.
type Notifier struct {
	DB      *sql.DB
	Channel string
}

// NewNotifier constructs a new Notifier for channel.
func NewNotifier(db *sql.DB, channel string) *Notifier {
	return &Notifier{DB: db, Channel: channel}
}

// Notify sends assessmentID as the payload on the channel.
func (n *Notifier) Notify(ctx context.Context, assessmentID string) error {
	_, err := n.DB.ExecContext(ctx, fmt.Sprintf("SELECT pg_notify(%s, $1)", pq.QuoteLiteral(n.Channel)), assessmentID)
	return err
}
