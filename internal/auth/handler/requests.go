package handler

import (
	"strings"

	"rinkside/internal/auth/service"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
)

type LoginRequest struct {
	TeamID        string `json:"team_id"`
	Role          string `json:"role"`
	Key           string `json:"key"`
	TermsAccepted bool   `json:"terms_accepted"`
}

// ToCommand validates the request and converts it to a service command. The
// caller address and user agent come from the transport, not the body.
func (r *LoginRequest) ToCommand(remoteAddr, userAgent string) (service.LoginCommand, error) {
	if r == nil {
		return service.LoginCommand{}, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	teamID, err := domain.ParseTeamID(strings.TrimSpace(r.TeamID))
	if err != nil {
		return service.LoginCommand{}, dErrors.New(dErrors.CodeBadRequest, "invalid team id")
	}
	role, err := domain.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return service.LoginCommand{}, dErrors.New(dErrors.CodeValidation, "role must be coach or player")
	}

	return service.LoginCommand{
		TeamID:        teamID,
		Role:          role,
		Key:           strings.TrimSpace(r.Key),
		TermsAccepted: r.TermsAccepted,
		RemoteAddr:    remoteAddr,
		UserAgent:     userAgent,
	}, nil
}
