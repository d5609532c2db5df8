package repository

import "github.com/medsalud/almacen-api/internal/domain/entity"

// UsuarioRepository cuentas de acceso (para login y atribución de auditoría).
type UsuarioRepository interface {
	GetByID(id string) (*entity.Usuario, error)
	GetByEmail(email string) (*entity.Usuario, error)
}
