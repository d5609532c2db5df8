package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistorialInventario es el registro de auditoría append-only del efecto de
// una salida sobre un producto: stock anterior y nuevo, cantidad y motivo.
// Este subsistema nunca lo actualiza ni lo borra.
type HistorialInventario struct {
	ID             string
	SalidaID       string
	ProductoID     string
	ProductoNombre string
	Cantidad       decimal.Decimal
	StockAnterior  decimal.Decimal
	StockNuevo     decimal.Decimal
	Motivo         string
	UsuarioID      string
	CreatedAt      time.Time
}
