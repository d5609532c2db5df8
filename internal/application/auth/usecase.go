package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/medsalud/almacen-api/internal/application/dto"
	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/internal/domain/repository"
	"github.com/medsalud/almacen-api/pkg/jwt"
)

// JWTConfig parámetros de emisión de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase login con bcrypt y emisión de JWT.
type UseCase struct {
	usuarioRepo repository.UsuarioRepository
	jwtCfg      JWTConfig
}

// NewUseCase construye el caso de uso de autenticación.
func NewUseCase(usuarioRepo repository.UsuarioRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{usuarioRepo: usuarioRepo, jwtCfg: jwtCfg}
}

// Login valida credenciales y devuelve un token con el rol del usuario.
// Credenciales inválidas devuelven siempre el mismo error, sin distinguir
// usuario inexistente de contraseña incorrecta.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.usuarioRepo.GetByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, Nombre: user.Nombre, Rol: user.Rol}, nil
}
