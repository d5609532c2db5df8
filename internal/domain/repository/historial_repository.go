package repository

import "github.com/medsalud/almacen-api/internal/domain/entity"

// HistorialRepository sink de auditoría, solo escritura. Se invoca dentro de
// la misma transacción de la salida: auditoría y efectos de negocio se
// confirman o revierten juntos.
type HistorialRepository interface {
	CreateBatch(entries []*entity.HistorialInventario) error
}
