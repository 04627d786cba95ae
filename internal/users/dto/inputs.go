package dto

// RegisterRequest creates an account
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32,username" minLength:"3" maxLength:"32" doc:"Login name: letters, digits, dot, dash and underscore"`
	Password    string `json:"password" validate:"required,min=8,max=72" minLength:"8" maxLength:"72" doc:"Password"`
	DisplayName string `json:"displayName,omitempty" validate:"max=64" maxLength:"64" doc:"Name shown to other players; defaults to the username"`
}

// LoginRequest exchanges credentials for a session token
type LoginRequest struct {
	Username string `json:"username" validate:"required" minLength:"1" doc:"Login name"`
	Password string `json:"password" validate:"required" minLength:"1" doc:"Password"`
}

// RegisterInput is the registration request
type RegisterInput struct {
	Body RegisterRequest
}

// LoginInput is the login request
type LoginInput struct {
	Body LoginRequest
}

// LogoutInput is the logout request
type LogoutInput struct{}

// MeInput addresses the caller's profile
type MeInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}
