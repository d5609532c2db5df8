package repository

import "github.com/medsalud/almacen-api/internal/domain/entity"

// ClienteRepository catálogo de clientes (colaborador externo; aquí solo se
// valida existencia y se lee el nombre para listados).
type ClienteRepository interface {
	GetByID(id string) (*entity.Cliente, error)
}
