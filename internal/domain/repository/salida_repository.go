package repository

import (
	"time"

	"github.com/medsalud/almacen-api/internal/domain/entity"
)

// Campos de ordenamiento soportados por List.
const (
	SalidaSortFecha = "fecha"
	SalidaSortFolio = "folio"
	SalidaSortTotal = "total"
)

// SalidaListFilter filtros y paginación para el listado de salidas.
// Search busca en folio, observaciones y nombre del cliente.
type SalidaListFilter struct {
	Search       string
	TipoSalidaID string
	ClienteID    string
	FechaDesde   *time.Time
	FechaHasta   *time.Time
	Sort         string
	Desc         bool
	Limit        int
	Offset       int
}

// SalidaRepository persistencia del documento de salida y sus detalles.
// Los detalles pertenecen a su salida (borrado en cascada).
type SalidaRepository interface {
	Create(s *entity.Salida) error
	UpdateHeader(s *entity.Salida) error
	Delete(id string) error
	GetByID(id string) (*entity.Salida, error)
	GetWithDetalles(id string) (*entity.Salida, error)
	CreateDetalle(d *entity.SalidaDetalle) error
	DeleteDetalles(salidaID string) error
	// ExistsFolio verifica unicidad de (serie, folio) entre las salidas,
	// excluyendo opcionalmente un documento (para ediciones). El catálogo
	// de tipos de salida no particiona folios; la partición es la tabla
	// del documento más la serie.
	ExistsFolio(serie, folio, excludeID string) (bool, error)
	// List devuelve la página solicitada. Count devuelve el conteo real;
	// el tope del total reportado lo aplica la capa de aplicación.
	List(f SalidaListFilter) ([]*entity.Salida, error)
	Count(f SalidaListFilter) (int, error)
	// MaxNumericFolio máximo folio puramente numérico de una serie; 0 si
	// no hay ninguno. Los códigos manuales no numéricos se excluyen.
	MaxNumericFolio(serie string) (int64, error)
}
