package handler

import (
	"regexp"
	"strings"

	dErrors "rinkside/pkg/domain-errors"
)

const maxNameLength = 80

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type CreateTeamRequest struct {
	Name           string `json:"name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	LogoURL        string `json:"logo_url"`
	TermsAccepted  bool   `json:"terms_accepted"`
}

func (r *CreateTeamRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.PrimaryColor = strings.TrimSpace(r.PrimaryColor)
	r.SecondaryColor = strings.TrimSpace(r.SecondaryColor)
	r.LogoURL = strings.TrimSpace(r.LogoURL)
}

func (r *CreateTeamRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !r.TermsAccepted {
		return dErrors.New(dErrors.CodeValidation, "terms of use must be accepted")
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	if r.PrimaryColor != "" && !hexColor.MatchString(r.PrimaryColor) {
		return dErrors.New(dErrors.CodeValidation, "primary_color must be a hex color like #1a2b3c")
	}
	if r.SecondaryColor != "" && !hexColor.MatchString(r.SecondaryColor) {
		return dErrors.New(dErrors.CodeValidation, "secondary_color must be a hex color like #1a2b3c")
	}
	return nil
}
