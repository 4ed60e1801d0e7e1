package logging

// Logger provides logging functionality with structured fields
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	WithScope(scope string) Logger
	WithContext(ctx map[string]interface{}) Logger
}

// LoggerFactory creates different types of loggers
type LoggerFactory interface {
	CreateLogger(component string) Logger
	CreateRepositoryLogger(table string) Logger
	CreateJobLogger(job string) Logger
}

// Options configures the zap core shared by every logger of a factory
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}
