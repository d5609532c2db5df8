package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

var _ repository.HistorialRepository = (*HistorialRepo)(nil)

// HistorialRepo sink de auditoría sobre PostgreSQL. Solo inserta; este
// subsistema nunca actualiza ni borra historial.
type HistorialRepo struct {
	q Querier
}

// NewHistorialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistorialRepository(q Querier) *HistorialRepo {
	return &HistorialRepo{q: q}
}

// CreateBatch inserta las entradas de auditoría como un batch pipelineado.
func (r *HistorialRepo) CreateBatch(entries []*entity.HistorialInventario) error {
	b := &pgx.Batch{}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		b.Queue(`
			INSERT INTO historial_inventario (id, salida_id, producto_id, producto_nombre,
				cantidad, stock_anterior, stock_nuevo, motivo, usuario_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID, e.SalidaID, e.ProductoID, e.ProductoNombre,
			e.Cantidad, e.StockAnterior, e.StockNuevo, e.Motivo, e.UsuarioID, e.CreatedAt,
		)
	}
	br := r.q.SendBatch(context.Background(), b)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("create historial: %w", err)
		}
	}
	return br.Close()
}
