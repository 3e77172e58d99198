package handler

import (
	"time"

	"rinkside/internal/team/models"
)

type TeamResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	PrimaryColor   string     `json:"primary_color,omitempty"`
	SecondaryColor string     `json:"secondary_color,omitempty"`
	LogoURL        string     `json:"logo_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActiveAt   *time.Time `json:"last_active_at,omitempty"`
}

// TeamCreateResponse carries the plaintext keys exactly once.
type TeamCreateResponse struct {
	Team      *TeamResponse `json:"team"`
	CoachKey  string        `json:"coach_key"`
	PlayerKey string        `json:"player_key"`
}

// TeamSummary is the public picker entry. No timestamps leak here.
type TeamSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
}

type TeamListResponse struct {
	Teams []TeamSummary `json:"teams"`
}

func toTeamResponse(t *models.Team) *TeamResponse {
	return &TeamResponse{
		ID:             t.ID.String(),
		Name:           t.Name,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
		LogoURL:        t.LogoURL,
		CreatedAt:      t.CreatedAt,
		LastActiveAt:   t.LastActiveAt,
	}
}

func toTeamListResponse(teams []models.Team) *TeamListResponse {
	out := TeamListResponse{Teams: make([]TeamSummary, 0, len(teams))}
	for _, t := range teams {
		out.Teams = append(out.Teams, TeamSummary{
			ID:             t.ID.String(),
			Name:           t.Name,
			PrimaryColor:   t.PrimaryColor,
			SecondaryColor: t.SecondaryColor,
			LogoURL:        t.LogoURL,
		})
	}
	return &out
}
