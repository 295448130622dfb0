package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxKYC    contextKey = "kyc_status"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func KYCStatusFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxKYC).(string); ok {
		return v
	}
	return ""
}

// RequireUserID parses the authenticated user id, failing with Unauthorized
// when the context was not seeded by the auth middleware.
func RequireUserID(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authenticated user")
	}
	return id, nil
}

// RequireActor parses the authenticated user id and role together.
func RequireActor(ctx context.Context) (uuid.UUID, enums.UserRole, error) {
	id, err := RequireUserID(ctx)
	if err != nil {
		return uuid.Nil, "", err
	}
	role, err := enums.ParseUserRole(RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor role")
	}
	return id, role, nil
}

// WithUserID injects the user identifier into the context. Used by tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context. Used by tests.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
