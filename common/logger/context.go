package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (project_id, activity_id, etc.) is automatically included in all log statements.
type LogFields struct {
	ProjectID  *int64  // Project that owns the work being logged
	UserID     *int64  // Acting user, when authenticated
	ActivityID *int64  // Persisted activity record ID
	DeliveryID *string // Webhook delivery identifier
	MessageID  *string // Redis stream message ID
	EventKind  *string // Webhook event kind (e.g. "push", "issues")
	Component  string  // Component name (e.g. "projecthub.webhook", "projecthub.sse.registry")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ProjectID != nil {
		result.ProjectID = next.ProjectID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.ActivityID != nil {
		result.ActivityID = next.ActivityID
	}
	if next.DeliveryID != nil {
		result.DeliveryID = next.DeliveryID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.EventKind != nil {
		result.EventKind = next.EventKind
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ProjectID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
