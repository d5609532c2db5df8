package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medsalud/almacen-api/internal/application/auth"
	"github.com/medsalud/almacen-api/internal/application/dto"
	"github.com/medsalud/almacen-api/pkg/logger"
)

// AuthHandler maneja login.
type AuthHandler struct {
	uc  *auth.UseCase
	log *logger.Logger
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.UseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email y password"
// @Success      200  {object}  dto.LoginResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseAndValidate(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	resp, err := h.uc.Login(c.Context(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(resp)
}
