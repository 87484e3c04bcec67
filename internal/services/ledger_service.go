package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"till/internal/amqp"
	"till/internal/core"
	"till/internal/ledger"
	"till/internal/log"
)

// EventPublisher announces ledger writes to other processes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, kind amqp.EventKind, id int64) error
}

// LedgerService validates and serializes ledger writes, then publishes a
// best-effort event for each one.
type LedgerService struct {
	mu        sync.Mutex
	store     ledger.Store
	publisher EventPublisher
	logger    *log.Logger
}

// NewLedgerService wires a store and an optional publisher. A nil publisher
// disables events.
func NewLedgerService(store ledger.Store, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default()
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// RecordSale validates and appends a sale. The stored payment method is the
// lower-cased form of method.
func (s *LedgerService) RecordSale(ctx context.Context, item string, price core.Money, method string) (core.Sale, error) {
	candidate := core.Sale{
		Item:          item,
		Price:         price,
		PaymentMethod: core.NormalizePaymentMethod(method),
	}
	if err := candidate.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected sale",
			log.NewFields().
				WithOperation(log.OpRecordSale).
				WithError(err, log.ErrorTypeValidation).
				ToSlice()...)
		return core.Sale{}, err
	}

	s.mu.Lock()
	sale, err := s.store.RecordSale(ctx, item, price, string(candidate.PaymentMethod))
	s.mu.Unlock()
	if err != nil {
		return core.Sale{}, fmt.Errorf("record sale: %w", err)
	}

	if !sale.PaymentMethod.IsKnown() {
		s.logger.WarnContext(ctx, "Sale recorded with unbucketed payment method",
			log.FieldSaleID, sale.ID,
			log.FieldPaymentMethod, sale.PaymentMethod)
	}

	s.publish(ctx, amqp.EventSaleRecorded, sale.ID)
	return sale, nil
}

// RecordExpense validates and appends an expense.
func (s *LedgerService) RecordExpense(ctx context.Context, description string, amount core.Money) (core.Expense, error) {
	candidate := core.Expense{Description: description, Amount: amount}
	if err := candidate.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected expense",
			log.NewFields().
				WithOperation(log.OpRecordExpense).
				WithError(err, log.ErrorTypeValidation).
				ToSlice()...)
		return core.Expense{}, err
	}

	s.mu.Lock()
	expense, err := s.store.RecordExpense(ctx, description, amount)
	s.mu.Unlock()
	if err != nil {
		return core.Expense{}, fmt.Errorf("record expense: %w", err)
	}

	s.publish(ctx, amqp.EventExpenseRecorded, expense.ID)
	return expense, nil
}

func (s *LedgerService) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping ledger event",
			log.FieldEventKind, kind)
		return
	}
	// The write already succeeded; a lost event only delays the mirror.
	if err := s.publisher.PublishLedgerEvent(ctx, kind, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithError(err, log.ErrorTypeNetwork).
				ToSlice()...)
	}
}

// Close closes the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
