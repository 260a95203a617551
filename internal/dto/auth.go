package dto

import (
	"time"

	"github.com/noah-isme/exam-period-api/internal/models"
)

// TokenRequest describes an access token to issue.
type TokenRequest struct {
	Subject string      `json:"subject" validate:"required,max=128"`
	Role    models.Role `json:"role" validate:"required,oneof=admin viewer"`
}

// TokenResponse returns an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}
