package httpapi

import (
	"context"

	"github.com/personal-report/organizer-api/internal/domain"
)

type userKey struct{}

func WithUser(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the authenticated user, or "" for an anonymous
// request. The application layer treats "" as not authenticated.
func UserFromContext(ctx context.Context) domain.UserID {
	v, _ := ctx.Value(userKey{}).(domain.UserID)
	return v
}
