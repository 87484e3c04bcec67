package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Cash        PaymentMethod = "cash"
	EWallet     PaymentMethod = "ewallet"
	OrangeMoney PaymentMethod = "orangemoney"
	Smega       PaymentMethod = "smega"
	MyZaka      PaymentMethod = "myzaka"
)

// TimestampLayout is the stored form of record timestamps. It sorts
// lexically in time order and is understood by SQLite's date functions.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date prefix of TimestampLayout.
const DateLayout = "2006-01-02"

// PaymentMethods lists the bucketed payment methods in reporting order.
var PaymentMethods = []PaymentMethod{Cash, EWallet, OrangeMoney, Smega, MyZaka}

type (
	PaymentMethod string

	// Clock returns the current time. Stores take one so tests can pin "today".
	Clock func() time.Time

	Sale struct {
		ID            int64
		Item          string
		Price         Money
		Timestamp     time.Time
		PaymentMethod PaymentMethod
	}

	Expense struct {
		ID          int64
		Description string
		Amount      Money
		Timestamp   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountTooLarge     = errors.New("amount too large")
	ErrAmountOverflow     = errors.New("amount overflow")
	ErrEmptyItem          = errors.New("empty item")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyPaymentMethod = errors.New("empty payment method")
)

// NormalizePaymentMethod lowercases a user supplied method name. Surrounding
// whitespace is kept, so " cash " is an unknown method. Unknown names are
// stored but never bucketed in totals.
func NormalizePaymentMethod(s string) PaymentMethod {
	return PaymentMethod(strings.ToLower(s))
}

// IsKnown reports whether m is one of PaymentMethods.
func (m PaymentMethod) IsKnown() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// SystemClock is the wall clock truncated to the second, the precision
// records are stored with.
func SystemClock() time.Time {
	return time.Now().Truncate(time.Second)
}

// Now returns c() or the system clock when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().Truncate(time.Second)
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s Sale) Validate() error {
	if strings.TrimSpace(s.Item) == "" {
		return &ValidationError{Field: "item", Err: ErrEmptyItem}
	}
	if err := s.Price.Validate(); err != nil {
		return &ValidationError{Field: "price", Err: err}
	}
	if strings.TrimSpace(string(s.PaymentMethod)) == "" {
		return &ValidationError{Field: "payment_method", Err: ErrEmptyPaymentMethod}
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	return nil
}
