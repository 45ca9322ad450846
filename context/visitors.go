package context

import (
	"context"
)

type contextkey string

const (
	visitorKey    contextkey = "visitor"
	newVisitorKey contextkey = "new_visitor"
)

// ContextSetVisitor binds the visitor id to ctx.
func ContextSetVisitor(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, visitorKey, visitorID)
}

// ContextGetVisitor retrieves the visitor id from request context.
// Returns "" if no visitor is set.
func ContextGetVisitor(ctx context.Context) string {
	val := ctx.Value(visitorKey)
	visitorID, ok := val.(string)
	if !ok {
		return ""
	}
	return visitorID
}

// ContextSetNewVisitor marks the visitor id in ctx as issued by this request.
func ContextSetNewVisitor(ctx context.Context) context.Context {
	return context.WithValue(ctx, newVisitorKey, true)
}

// ContextIsNewVisitor reports whether the visitor id was issued by this
// request rather than read from its cookie.
func ContextIsNewVisitor(ctx context.Context) bool {
	isNew, _ := ctx.Value(newVisitorKey).(bool)
	return isNew
}
