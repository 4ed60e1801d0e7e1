package logging

import (
	"fmt"
)

// ScopedLogger wraps a base logger with a fixed scope prefix and context
type ScopedLogger struct {
	base    Logger
	scope   string
	context map[string]interface{}
}

// NewScopedLogger creates a new scope-specific logger
func NewScopedLogger(base Logger, scope string) *ScopedLogger {
	return &ScopedLogger{
		base:    base,
		scope:   scope,
		context: make(map[string]interface{}),
	}
}

// Info logs informational messages with scope context
func (s *ScopedLogger) Info(msg string, fields map[string]interface{}) {
	s.base.Info(s.prefix(msg), s.enrichFields(fields))
}

// Error logs error messages with scope context
func (s *ScopedLogger) Error(msg string, err error, fields map[string]interface{}) {
	s.base.Error(s.prefix(msg), err, s.enrichFields(fields))
}

// Warn logs warning messages with scope context
func (s *ScopedLogger) Warn(msg string, fields map[string]interface{}) {
	s.base.Warn(s.prefix(msg), s.enrichFields(fields))
}

// Debug logs debug messages with scope context
func (s *ScopedLogger) Debug(msg string, fields map[string]interface{}) {
	s.base.Debug(s.prefix(msg), s.enrichFields(fields))
}

// WithScope creates a new logger with a different scope and the same context
func (s *ScopedLogger) WithScope(scope string) Logger {
	return &ScopedLogger{
		base:    s.base,
		scope:   scope,
		context: s.copyContext(),
	}
}

// WithContext creates a new logger with additional context fields
func (s *ScopedLogger) WithContext(ctx map[string]interface{}) Logger {
	newContext := s.copyContext()
	for k, v := range ctx {
		newContext[k] = v
	}

	return &ScopedLogger{
		base:    s.base,
		scope:   s.scope,
		context: newContext,
	}
}

func (s *ScopedLogger) prefix(msg string) string {
	return fmt.Sprintf("[%s] %s", s.scope, msg)
}

// enrichFields combines scope context with provided fields
func (s *ScopedLogger) enrichFields(fields map[string]interface{}) map[string]interface{} {
	enriched := make(map[string]interface{}, len(s.context)+len(fields)+1)

	for k, v := range s.context {
		enriched[k] = v
	}

	// Provided fields can override context
	for k, v := range fields {
		enriched[k] = v
	}

	enriched["scope"] = s.scope

	return enriched
}

func (s *ScopedLogger) copyContext() map[string]interface{} {
	newContext := make(map[string]interface{}, len(s.context))
	for k, v := range s.context {
		newContext[k] = v
	}
	return newContext
}

// RepositoryLogger logs operations against a single table
type RepositoryLogger struct {
	*ScopedLogger
	table string
}

// NewRepositoryLogger creates a new repository logger
func NewRepositoryLogger(base Logger, table string) *RepositoryLogger {
	scoped := NewScopedLogger(base, "repository").WithContext(map[string]interface{}{
		"table": table,
	}).(*ScopedLogger)

	return &RepositoryLogger{
		ScopedLogger: scoped,
		table:        table,
	}
}

// WithRecord adds the primary key of the row being handled
func (r *RepositoryLogger) WithRecord(id interface{}) Logger {
	return r.WithContext(map[string]interface{}{
		"record_id": id,
	})
}

// JobLogger logs the runs of a background job
type JobLogger struct {
	*ScopedLogger
	job string
}

// NewJobLogger creates a new job logger
func NewJobLogger(base Logger, job string) *JobLogger {
	scoped := NewScopedLogger(base, job).WithContext(map[string]interface{}{
		"job": job,
	}).(*ScopedLogger)

	return &JobLogger{
		ScopedLogger: scoped,
		job:          job,
	}
}
