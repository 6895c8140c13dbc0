package dto

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName string  `json:"display_name" validate:"required"`
	Phone       *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// AuthClaims is the decoded payload of a verified token.
type AuthClaims struct {
	Sub        uint   `json:"sub"`
	Username   string `json:"username,omitempty"`
	IsBusiness bool   `json:"isBusiness,omitempty"`
	Exp        int64  `json:"exp"`
	Iat        int64  `json:"iat"`
}
