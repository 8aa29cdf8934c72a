package shared

import (
	"context"

	"github.com/google/uuid"
)

type subjectContextKey struct{}

// ContextWithSubject stores the verified token subject in context.
func ContextWithSubject(ctx context.Context, subject uuid.UUID) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, subject)
}

// SubjectFromContext extracts the verified token subject from context.
func SubjectFromContext(ctx context.Context) (uuid.UUID, bool) {
	subject, ok := ctx.Value(subjectContextKey{}).(uuid.UUID)
	return subject, ok
}
