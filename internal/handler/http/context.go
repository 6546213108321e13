package http

import (
	"net/http"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// actorFromContext returns the user id of the verified token, or "" when absent.
func actorFromContext(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	userID, _ := claims[jwt.ClaimUserID].(string)
	return userID
}
