package controllers

type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AuthResponse is returned by every successful sign-in.
type AuthResponse struct {
	TokenType   string      `json:"token_type"`
	AccessToken string      `json:"access_token"`
	User        interface{} `json:"user"`
}

type CountMeta struct {
	Total int `json:"total"`
}
