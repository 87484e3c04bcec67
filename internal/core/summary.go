package core

import "fmt"

// PaymentTotals maps each payment method to the sum of its sale prices.
type PaymentTotals map[PaymentMethod]Money

// MethodTotal is one row of PaymentTotals in reporting order.
type MethodTotal struct {
	Method PaymentMethod
	Total  Money
}

// NewPaymentTotals returns the five bucketed methods, all at zero.
func NewPaymentTotals() PaymentTotals {
	t := make(PaymentTotals, len(PaymentMethods))
	for _, m := range PaymentMethods {
		t[m] = Money{}
	}
	return t
}

// Add credits amount to method if it is a bucketed method. Unknown methods
// are ignored and Add reports false. A sum leaving the int64 range fails
// with ErrAmountOverflow and leaves the total unchanged.
func (t PaymentTotals) Add(method PaymentMethod, amount Money) (bool, error) {
	current, ok := t[method]
	if !ok {
		return false, nil
	}
	sum, err := current.Add(amount)
	if err != nil {
		return true, fmt.Errorf("%s total: %w", method, err)
	}
	t[method] = sum
	return true, nil
}

// Ordered returns the totals in PaymentMethods order.
func (t PaymentTotals) Ordered() []MethodTotal {
	out := make([]MethodTotal, 0, len(PaymentMethods))
	for _, m := range PaymentMethods {
		out = append(out, MethodTotal{Method: m, Total: t[m]})
	}
	return out
}

// DailySummary is derived on every request and never stored.
type DailySummary struct {
	Totals        PaymentTotals
	TotalExpenses Money
	CashInHand    Money
}
