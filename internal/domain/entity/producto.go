package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados del producto según cantidad y caducidad.
const (
	EstadoDisponible = "DISPONIBLE"
	EstadoAgotado    = "AGOTADO"
	EstadoCaducado   = "CADUCADO"
)

// Producto representa un insumo médico del almacén. Cantidad es el stock
// en mano autoritativo; solo los apply del ledger lo mutan, siempre dentro
// de la transacción dueña de la mutación de la salida.
type Producto struct {
	ID             string
	Codigo         string
	Nombre         string
	Descripcion    string
	Cantidad       decimal.Decimal
	Estado         string
	Precio         decimal.Decimal
	FechaCaducidad *time.Time
	// Umbrales informativos; el ledger no los hace cumplir.
	StockMinimo  decimal.Decimal
	StockMaximo  decimal.Decimal
	PuntoReorden decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeriveEstado calcula el estado de un producto: AGOTADO si cantidad <= 0,
// CADUCADO si la fecha de caducidad ya pasó, DISPONIBLE en otro caso.
func DeriveEstado(cantidad decimal.Decimal, caducidad *time.Time, now time.Time) string {
	if cantidad.LessThanOrEqual(decimal.Zero) {
		return EstadoAgotado
	}
	if caducidad != nil && caducidad.Before(now) {
		return EstadoCaducado
	}
	return EstadoDisponible
}
