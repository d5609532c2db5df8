package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lote es un batch recibido de un producto, con su propia cantidad
// disponible. Nace de una línea de entrada y se consume desde salidas.
type Lote struct {
	ID                 string
	ProductoID         string
	EntradaDetalleID   string
	NumeroLote         string
	CantidadDisponible decimal.Decimal
	FechaCaducidad     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
