package repository

import (
	"github.com/shopspring/decimal"

	"github.com/medsalud/almacen-api/internal/domain/entity"
)

// StockDelta ajuste relativo al stock de un producto, con el estado ya
// derivado de la cantidad resultante bajo el lock de fila.
type StockDelta struct {
	ProductoID string
	Delta      decimal.Decimal
	Estado     string
}

// ProductoRepository lecturas del catálogo y apply del ledger de stock.
// Los apply solo se invocan dentro de la transacción dueña de la mutación.
type ProductoRepository interface {
	GetByID(id string) (*entity.Producto, error)
	// GetByIDs carga el snapshot de todos los productos afectados en una
	// sola lectura.
	GetByIDs(ids []string) (map[string]*entity.Producto, error)
	// GetByIDsForUpdate igual que GetByIDs pero bloqueando las filas
	// (SELECT FOR UPDATE) para serializar decrementos concurrentes.
	GetByIDsForUpdate(ids []string) (map[string]*entity.Producto, error)
	// ApplyDeltas emite las escrituras por producto como una sola unidad
	// lógica (fan-out en lote dentro de la transacción).
	ApplyDeltas(deltas []StockDelta) error
}
