package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalidaDetalleRequest línea de una salida. Si Precio es cero se toma el
// precio vigente del producto. LoteID es opcional; cuando viene, la salida
// descuenta también la disponibilidad de ese lote.
type SalidaDetalleRequest struct {
	ProductoID string          `json:"producto_id" validate:"required"`
	LoteID     *string         `json:"lote_id,omitempty"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Precio     decimal.Decimal `json:"precio"`
}

// CreateSalidaRequest body para POST /api/salidas.
// Folio vacío = asignación automática del consecutivo; no vacío = folio
// manual (puede ser un código arbitrario no numérico).
type CreateSalidaRequest struct {
	TipoSalidaID  string                 `json:"tipo_salida_id" validate:"required"`
	ClienteID     *string                `json:"cliente_id,omitempty"`
	Folio         string                 `json:"folio,omitempty"`
	Serie         string                 `json:"serie,omitempty"`
	FechaCreacion *time.Time             `json:"fecha_creacion,omitempty"`
	Observaciones string                 `json:"observaciones,omitempty"`
	Detalles      []SalidaDetalleRequest `json:"detalles" validate:"required,min=1,dive"`
}

// ReplaceSalidaRequest body para PUT /api/salidas/:id (reemplazo completo).
// Folio vacío conserva el folio emitido; cambiar folio o fecha_creacion
// requiere la capacidad salidas/folio_edit.
type ReplaceSalidaRequest = CreateSalidaRequest

// ListSalidasRequest query params para GET /api/salidas.
type ListSalidasRequest struct {
	PageRequest
	Search       string `query:"search"`
	TipoSalidaID string `query:"tipo_salida_id"`
	ClienteID    string `query:"cliente_id"`
	FechaDesde   string `query:"fecha_desde"` // YYYY-MM-DD
	FechaHasta   string `query:"fecha_hasta"` // YYYY-MM-DD
	Sort         string `query:"sort" validate:"omitempty,oneof=fecha folio total"`
	Dir          string `query:"dir" validate:"omitempty,oneof=asc desc"`
}

// SalidaDetalleResponse línea en respuestas.
type SalidaDetalleResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	LoteID         *string         `json:"lote_id,omitempty"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	Precio         decimal.Decimal `json:"precio"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Orden          int             `json:"orden"`
	CaducidadLote  *time.Time      `json:"caducidad_lote,omitempty"`
}

// SalidaResponse documento de salida en respuestas.
type SalidaResponse struct {
	ID            string                  `json:"id"`
	Folio         string                  `json:"folio"`
	Serie         string                  `json:"serie"`
	TipoSalidaID  string                  `json:"tipo_salida_id"`
	ClienteID     *string                 `json:"cliente_id,omitempty"`
	ClienteNombre string                  `json:"cliente_nombre,omitempty"`
	UsuarioID     string                  `json:"usuario_id"`
	Total         decimal.Decimal         `json:"total"`
	Observaciones string                  `json:"observaciones,omitempty"`
	Estado        string                  `json:"estado"`
	FechaCreacion time.Time               `json:"fecha_creacion"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Detalles      []SalidaDetalleResponse `json:"detalles,omitempty"`
}

// ListSalidasResponse página de salidas.
type ListSalidasResponse struct {
	Items      []SalidaResponse `json:"items"`
	Pagination PageResponse     `json:"pagination"`
}

// DeleteSalidaResponse resultado de eliminar una salida.
type DeleteSalidaResponse struct {
	Folio              string `json:"folio"`
	Serie              string `json:"serie"`
	DetallesEliminados int    `json:"detalles_eliminados"`
}
