package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del documento de salida.
const (
	SalidaEstadoCompletada = "COMPLETADA"
	SalidaEstadoCancelada  = "CANCELADA"
)

// Salida es el documento de movimiento de salida: insumos que dejan el
// almacén hacia un cliente o departamento. El folio suele ser numérico
// consecutivo pero admite códigos manuales arbitrarios.
type Salida struct {
	ID            string
	Folio         string
	Serie         string
	TipoSalidaID  string
	ClienteID     *string
	UsuarioID     string
	Total         decimal.Decimal
	Observaciones string
	Estado        string
	// FechaCreacion es la fecha de negocio del documento, distinta del
	// timestamp de inserción (CreatedAt).
	FechaCreacion time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Denormalizados para listados.
	ClienteNombre string
	Detalles      []*SalidaDetalle
}

// SalidaDetalle es una línea del documento. CaducidadLote se congela al
// momento del registro para que ediciones posteriores del lote no alteren
// documentos históricos. Invariante: Cantidad > 0.
type SalidaDetalle struct {
	ID            string
	SalidaID      string
	ProductoID    string
	LoteID        *string
	Cantidad      decimal.Decimal
	Precio        decimal.Decimal
	Orden         int
	CaducidadLote *time.Time

	// Denormalizado para respuestas.
	ProductoNombre string
}

// Subtotal de la línea (cantidad * precio).
func (d *SalidaDetalle) Subtotal() decimal.Decimal {
	return d.Cantidad.Mul(d.Precio)
}
