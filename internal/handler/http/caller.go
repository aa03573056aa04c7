package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

type caller struct {
	UserID string
	Role   user.Role
}

func (c caller) canAccess(ownerID string) bool {
	return c.Role == user.RoleAdmin || c.UserID == ownerID
}

// callerFromRequest reads the identity placed in the context by jwtauth.Verifier.
func callerFromRequest(r *http.Request) (caller, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return caller{}, auth.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return caller{}, auth.ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return caller{UserID: userID, Role: user.Role(role)}, nil
}
