package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var assessmentSchema string

// schemaStatements splits the embedded schema on statement terminators.
func schemaStatements() []string {
	var stmts []string
	for _, s := range strings.Split(assessmentSchema, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// Migrate applies the audit schema.  Every statement is idempotent, so it
// runs on each start of the server.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, stmt := range schemaStatements() {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
