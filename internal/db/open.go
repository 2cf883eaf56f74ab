package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to PostgreSQL or SQLite depending on the DSN shape.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	var dialector gorm.Dialector
	if IsPostgresDSN(trimmed) {
		dialector = postgres.Open(trimmed)
	} else {
		dialector = sqlite.Open(NormalizeSQLiteDSN(trimmed))
	}

	conn, errOpen := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if errOpen != nil {
		return nil, fmt.Errorf("db: open: %w", errOpen)
	}
	return conn, nil
}

// NormalizeSQLiteDSN prefixes file: and enables foreign keys, a busy timeout and WAL
// unless the caller already configured foreign keys.
func NormalizeSQLiteDSN(dsn string) string {
	normalized := strings.TrimSpace(dsn)
	if !strings.HasPrefix(strings.ToLower(normalized), "file:") {
		normalized = "file:" + normalized
	}
	if strings.Contains(normalized, "foreign_keys") {
		return normalized
	}
	separator := "?"
	if strings.Contains(normalized, "?") {
		separator = "&"
	}
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
	}
	if !strings.Contains(normalized, ":memory:") && !strings.Contains(normalized, "mode=memory") {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return normalized + separator + strings.Join(pragmas, "&")
}
