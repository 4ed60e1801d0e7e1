package logging

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultLoggerFactory implements LoggerFactory using zap loggers
type DefaultLoggerFactory struct {
	base    *zap.Logger
	loggers map[string]Logger
	mu      sync.RWMutex
}

// NewLoggerFactory creates a new logger factory sharing one zap core
func NewLoggerFactory(opts Options) LoggerFactory {
	base, err := buildZap(opts)
	if err != nil {
		base = zap.NewNop()
	}
	return NewLoggerFactoryFrom(base)
}

// NewLoggerFactoryFrom creates a factory around an existing zap logger
func NewLoggerFactoryFrom(base *zap.Logger) LoggerFactory {
	return &DefaultLoggerFactory{
		base:    base,
		loggers: make(map[string]Logger),
	}
}

// CreateLogger creates a basic logger for the specified component
func (f *DefaultLoggerFactory) CreateLogger(component string) Logger {
	f.mu.RLock()
	logger, exists := f.loggers[component]
	f.mu.RUnlock()
	if exists {
		return logger
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	logger = NewZapLoggerFrom(f.base, component)
	f.loggers[component] = logger
	return logger
}

// CreateRepositoryLogger creates a logger for operations on one table
func (f *DefaultLoggerFactory) CreateRepositoryLogger(table string) Logger {
	return NewRepositoryLogger(f.CreateLogger("database"), table)
}

// CreateJobLogger creates a logger for a background job
func (f *DefaultLoggerFactory) CreateJobLogger(job string) Logger {
	return NewJobLogger(f.CreateLogger("jobs"), job)
}

// GlobalLoggerFactory provides a singleton logger factory instance
var (
	globalFactory LoggerFactory
	factoryMu     sync.RWMutex
)

// GetGlobalLoggerFactory returns the global logger factory instance
func GetGlobalLoggerFactory() LoggerFactory {
	factoryMu.RLock()
	f := globalFactory
	factoryMu.RUnlock()
	if f != nil {
		return f
	}

	factoryMu.Lock()
	defer factoryMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewLoggerFactory(Options{Level: "info", Format: "json"})
	}
	return globalFactory
}

// SetGlobalLoggerFactory sets the global logger factory (useful for dependency injection)
func SetGlobalLoggerFactory(factory LoggerFactory) {
	factoryMu.Lock()
	globalFactory = factory
	factoryMu.Unlock()
}
