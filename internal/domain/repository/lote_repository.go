package repository

import (
	"github.com/shopspring/decimal"

	"github.com/medsalud/almacen-api/internal/domain/entity"
)

// LoteDelta ajuste relativo a la cantidad disponible de un lote.
type LoteDelta struct {
	LoteID string
	Delta  decimal.Decimal
}

// LoteRepository bookkeeping por lote. Se muta en lockstep con el producto
// que respalda, dentro de la misma transacción.
type LoteRepository interface {
	GetByID(id string) (*entity.Lote, error)
	GetByIDs(ids []string) (map[string]*entity.Lote, error)
	GetByIDsForUpdate(ids []string) (map[string]*entity.Lote, error)
	ApplyDeltas(deltas []LoteDelta) error
}
