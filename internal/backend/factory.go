package backend

import (
	"context"
	"fmt"

	"till/internal/adapters"
	"till/internal/amqp"
	"till/internal/core"
	"till/internal/ledger"
	"till/internal/ledger/memory"
	"till/internal/log"
	"till/internal/services"
	"till/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	clock  core.Clock
}

// FactoryOption customizes a DefaultFactory.
type FactoryOption func(*DefaultFactory)

// WithClock pins the clock stores use to stamp records.
func WithClock(c core.Clock) FactoryOption {
	return func(f *DefaultFactory) { f.clock = c }
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger, opts ...FactoryOption) Factory {
	if logger == nil {
		logger = log.Default()
	}
	f := &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		clock:  core.SystemClock,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store ledger.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.DBPath, storage.WithClock(f.clock))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.DBPath)
	case MemoryBackend:
		store = memory.New(f.clock)
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// AMQP is optional; the ledger works without it.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewLedgerService(store, publisher, f.logger)

	return &BackendResult{
		Ledger:  adapters.NewLedgerAdapter(store, service),
		Service: service,
		Cleanup: service.Close,
	}, nil
}
