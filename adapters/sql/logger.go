package sql

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SQLLogger writes executed statements to a zap logger at debug level
type SQLLogger struct {
	logger  *zap.Logger
	enabled atomic.Bool
}

// NewSQLLogger creates a new SQL logger
func NewSQLLogger(logger *zap.Logger, enabled bool) *SQLLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &SQLLogger{logger: logger.Named("sql")}
	l.enabled.Store(enabled)
	return l
}

// IsEnabled returns whether SQL logging is enabled
func (l *SQLLogger) IsEnabled() bool {
	return l.enabled.Load()
}

// SetEnabled enables or disables SQL logging
func (l *SQLLogger) SetEnabled(enabled bool) {
	l.enabled.Store(enabled)
}

// LogQuery logs a SELECT with its duration and row count
func (l *SQLLogger) LogQuery(query string, args []any, duration time.Duration, rowCount int) {
	if !l.IsEnabled() {
		return
	}
	l.logger.Debug(formatQuery(query),
		zap.String("args", formatArgs(args)),
		zap.Duration("took", duration),
		zap.Int("rows", rowCount))
}

// LogExec logs an UPDATE or DELETE with its duration and affected rows
func (l *SQLLogger) LogExec(query string, args []any, duration time.Duration, result sql.Result) {
	if !l.IsEnabled() {
		return
	}

	fields := []zap.Field{
		zap.String("args", formatArgs(args)),
		zap.Duration("took", duration),
	}
	if result != nil {
		if affected, err := result.RowsAffected(); err == nil {
			fields = append(fields, zap.Int64("rows", affected))
		}
	}
	l.logger.Debug(formatQuery(query), fields...)
}

// LogError logs a statement that failed. Errors are logged even when
// statement logging is disabled.
func (l *SQLLogger) LogError(query string, args []any, duration time.Duration, err error) {
	l.logger.Warn(formatQuery(query),
		zap.String("args", formatArgs(args)),
		zap.Duration("took", duration),
		zap.Error(err))
}

// formatQuery collapses whitespace so statements log on one line
func formatQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return "[]"
	}

	formatted := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			formatted = append(formatted, fmt.Sprintf("%q", v))
		case nil:
			formatted = append(formatted, "NULL")
		default:
			formatted = append(formatted, fmt.Sprintf("%v", v))
		}
	}
	return "[" + strings.Join(formatted, ", ") + "]"
}
