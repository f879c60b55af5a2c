package dto

// LoginResponse defines the data returned on a successful login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// RefreshTokenResponse defines the data returned on a token refresh.
type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
}
