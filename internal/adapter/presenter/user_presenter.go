package presenter

import (
	"encoding/json"

	authDTO "github.com/call-manager-team/call-manager/internal/adapter/dto/auth"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/usecase/auth"
)

// ToUserResponse converts a User entity to UserResponse DTO
func ToUserResponse(u *entities.User) *authDTO.UserResponse {
	if u == nil {
		return nil
	}

	// Parse playback preferences from JSONB
	var playbackPrefs map[string]interface{}
	if u.PlaybackPreferences != nil {
		json.Unmarshal(u.PlaybackPreferences, &playbackPrefs)
	}

	response := &authDTO.UserResponse{
		ID:                  u.ID.String(),
		Email:               u.Email,
		Name:                u.Name,
		Role:                string(u.Role),
		Timezone:            u.Timezone,
		EmailVerified:       u.IsEmailVerified,
		PlaybackPreferences: playbackPrefs,
		LastActiveAt:        u.LastActiveAt,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}

	// Set optional fields
	if u.AvatarURL != nil {
		response.AvatarURL = *u.AvatarURL
	}
	if u.OAuthProvider != nil {
		response.OAuthProvider = *u.OAuthProvider
	}

	return response
}

// ToAuthRefreshTokenResponse converts usecase AuthResponse to DTO RefreshTokenResponse (for refresh endpoint)
func ToAuthRefreshTokenResponse(usecaseResp *auth.AuthResponse) *authDTO.RefreshTokenResponse {
	if usecaseResp == nil {
		return nil
	}
	return &authDTO.RefreshTokenResponse{
		AccessToken: usecaseResp.AccessToken,
		ExpiresIn:   int(usecaseResp.ExpiresIn),
		TokenType:   "Bearer",
	}
}

// ToAuthResponse converts usecase AuthResponse to DTO AuthResponse
func ToAuthResponse(usecaseResp *auth.AuthResponse) *authDTO.AuthResponse {
	if usecaseResp == nil {
		return nil
	}

	return &authDTO.AuthResponse{
		AccessToken:  usecaseResp.AccessToken,
		RefreshToken: usecaseResp.RefreshToken,
		ExpiresIn:    int(usecaseResp.ExpiresIn),
		TokenType:    "Bearer",
		User:         ToUserResponse(usecaseResp.User),
	}
}
