package context

import (
	"context"
)

const contextKeyFormField = contextKey("formField")

// FormFieldFromContext extracts the name of the form field being validated.
// Returns the field name and true if present, or empty string and false if not present.
func FormFieldFromContext(ctx context.Context) (string, bool) {
	field, ok := ctx.Value(contextKeyFormField).(string)

	return field, ok
}

// WithFormField creates a new context tagged with the name of a form field.
func WithFormField(ctx context.Context, field string) context.Context {
	return context.WithValue(ctx, contextKeyFormField, field)
}
