package repository

import "github.com/medsalud/almacen-api/internal/domain/entity"

// FolioRepository consecutivo de folios por tipo de movimiento.
type FolioRepository interface {
	GetConfig(tipo string) (*entity.FolioConfig, error)
	// GetConfigForUpdate carga la configuración bloqueando la fila; usar
	// dentro de la transacción que reserva el siguiente folio.
	GetConfigForUpdate(tipo string) (*entity.FolioConfig, error)
	// AdvanceTo sube el consecutivo de forma monotónica:
	// proximo_folio = GREATEST(proximo_folio, proximo). Nunca retrocede,
	// por lo que es seguro bajo concurrencia e idempotente.
	AdvanceTo(tipo string, proximo int64) error
}
