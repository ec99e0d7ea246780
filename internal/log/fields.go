package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldUserID      = "user_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldAlertType   = "alert_type"
	FieldSeverity    = "severity"
	FieldStatus      = "status"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldWindow      = "window"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentEvaluator = "evaluator"
	ComponentBudget    = "budget"
	ComponentAnomaly   = "anomaly"
	ComponentAnalytics = "analytics"
	ComponentAlert     = "alert"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentClassify  = "classify"
)

// Operations defines standard operation names
const (
	OpEvaluate = "evaluate"
	OpProfile  = "profile"
	OpDetect   = "detect"
	OpReport   = "report"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpRead     = "read"
	OpWrite    = "write"
	OpDelete   = "delete"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithUser adds user ID field
func (f LogFields) WithUser(userID string) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithAlert adds alert-related fields
func (f LogFields) WithAlert(alertType, category, severity string) LogFields {
	f[FieldAlertType] = alertType
	f[FieldCategory] = category
	f[FieldSeverity] = severity
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
