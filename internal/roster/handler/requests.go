package handler

import (
	"time"

	"rinkside/internal/roster/models"
)

type AddPlayerRequest struct {
	Name     string `json:"name"`
	Number   int    `json:"number"`
	Position string `json:"position"`
}

type PlayerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    int       `json:"number"`
	Position  string    `json:"position,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PlayerListResponse struct {
	Players []PlayerResponse `json:"players"`
}

func toPlayerResponse(p *models.Player) *PlayerResponse {
	return &PlayerResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Number:    p.Number,
		Position:  p.Position,
		CreatedAt: p.CreatedAt,
	}
}

func toPlayerListResponse(players []models.Player) *PlayerListResponse {
	out := PlayerListResponse{Players: make([]PlayerResponse, 0, len(players))}
	for i := range players {
		out.Players = append(out.Players, *toPlayerResponse(&players[i]))
	}
	return &out
}
