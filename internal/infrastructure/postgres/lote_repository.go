package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

var _ repository.LoteRepository = (*LoteRepo)(nil)

// LoteRepo implementación sobre PostgreSQL (usable con pool o tx).
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

const loteColumns = `id, producto_id, entrada_detalle_id, numero_lote,
	cantidad_disponible, fecha_caducidad, created_at, updated_at`

func scanLote(row pgx.Row) (*entity.Lote, error) {
	var l entity.Lote
	err := row.Scan(
		&l.ID, &l.ProductoID, &l.EntradaDetalleID, &l.NumeroLote,
		&l.CantidadDisponible, &l.FechaCaducidad, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID obtiene un lote.
func (r *LoteRepo) GetByID(id string) (*entity.Lote, error) {
	query := `SELECT ` + loteColumns + ` FROM lotes WHERE id = $1`
	l, err := scanLote(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lote: %w", err)
	}
	return l, nil
}

// GetByIDs carga los lotes pedidos en una sola lectura.
func (r *LoteRepo) GetByIDs(ids []string) (map[string]*entity.Lote, error) {
	return r.getByIDs(ids, false)
}

// GetByIDsForUpdate igual que GetByIDs pero bloqueando las filas.
func (r *LoteRepo) GetByIDsForUpdate(ids []string) (map[string]*entity.Lote, error) {
	return r.getByIDs(ids, true)
}

func (r *LoteRepo) getByIDs(ids []string, forUpdate bool) (map[string]*entity.Lote, error) {
	if len(ids) == 0 {
		return map[string]*entity.Lote{}, nil
	}
	query := `SELECT ` + loteColumns + ` FROM lotes WHERE id = ANY($1) ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("get lotes: %w", err)
	}
	defer rows.Close()
	out := make(map[string]*entity.Lote, len(ids))
	for rows.Next() {
		l, err := scanLote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lote: %w", err)
		}
		out[l.ID] = l
	}
	return out, rows.Err()
}

// ApplyDeltas ajusta la disponibilidad por lote como batch pipelineado
// dentro de la transacción, en lockstep con el producto que respalda.
func (r *LoteRepo) ApplyDeltas(deltas []repository.LoteDelta) error {
	b := &pgx.Batch{}
	for _, d := range deltas {
		b.Queue(`
			UPDATE lotes
			SET cantidad_disponible = cantidad_disponible + $1, updated_at = now()
			WHERE id = $2`,
			d.Delta, d.LoteID,
		)
	}
	br := r.q.SendBatch(context.Background(), b)
	defer br.Close()
	for range deltas {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("apply lote delta: %w", err)
		}
	}
	return br.Close()
}
