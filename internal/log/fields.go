package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldSaleID        = "sale_id"
	FieldExpenseID     = "expense_id"
	FieldItem          = "item"
	FieldDescription   = "description"
	FieldAmountCents   = "amount_cents"
	FieldPaymentMethod = "payment_method"
	FieldDestination   = "destination"
	FieldEventKind     = "event_kind"
	FieldDuration      = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentReport  = "report"
	ComponentExport  = "export"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpRecordSale    = "record_sale"
	OpRecordExpense = "record_expense"
	OpSummary       = "summary"
	OpExport        = "export"
	OpMirror        = "mirror"
	OpPublish       = "publish"
	OpConsume       = "consume"
	OpStartup       = "startup"
	OpShutdown      = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeExport        = "export_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error message and, when given, its category.
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		if errorType != "" {
			f[FieldErrorType] = errorType
		}
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithSale adds sale-related fields
func (f LogFields) WithSale(id int64, item string, priceCents int64, method string) LogFields {
	f[FieldSaleID] = id
	f[FieldItem] = item
	f[FieldAmountCents] = priceCents
	f[FieldPaymentMethod] = method
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id int64, desc string, amountCents int64) LogFields {
	f[FieldExpenseID] = id
	f[FieldDescription] = desc
	f[FieldAmountCents] = amountCents
	return f
}

func (f LogFields) WithDestination(dest string) LogFields {
	f[FieldDestination] = dest
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
