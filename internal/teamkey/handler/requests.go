package handler

import (
	"time"

	"rinkside/internal/teamkey/models"
)

type RotateRequest struct {
	Role string `json:"role"`
}

// RotateResponse carries the fresh plaintext exactly once.
type RotateResponse struct {
	Role      string    `json:"role"`
	Key       string    `json:"key"`
	RotatedAt time.Time `json:"rotated_at"`
}

type KeyListResponse struct {
	Keys []models.Metadata `json:"keys"`
}

func toKeyListResponse(metadata []models.Metadata) *KeyListResponse {
	if metadata == nil {
		metadata = []models.Metadata{}
	}
	return &KeyListResponse{Keys: metadata}
}
