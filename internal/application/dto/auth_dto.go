package dto

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT emitido.
type LoginResponse struct {
	Token  string `json:"token"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
}
