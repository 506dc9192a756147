package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Open connects to a libsql database and verifies the connection.
func Open(ctx context.Context, url, authToken string) (*sql.DB, error) {
	dsn := url
	if authToken != "" && !strings.Contains(url, "authToken=") {
		dsn = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	database, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", url, err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(25)
	database.SetConnMaxLifetime(5 * time.Minute)

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return database, nil
}
