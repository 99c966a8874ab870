package internal

import (
	"context"
)

type ctxKey string

const (
	// contextDepartmentKey carries the department resolved by the department
	// gate so downstream handlers can use it as an implicit filter.
	contextDepartmentKey ctxKey = "department"
)

func DepartmentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if dept, ok := ctx.Value(contextDepartmentKey).(string); ok {
		return dept
	}
	return ""
}

func ContextWithDepartment(ctx context.Context, department string) context.Context {
	return context.WithValue(ctx, contextDepartmentKey, department)
}
