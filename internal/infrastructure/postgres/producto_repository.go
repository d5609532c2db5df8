package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

// ProductoRepo implementación sobre PostgreSQL (usable con pool o tx).
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

const productoColumns = `id, codigo, nombre, descripcion, cantidad, estado, precio,
	fecha_caducidad, stock_minimo, stock_maximo, punto_reorden, created_at, updated_at`

func scanProducto(row pgx.Row) (*entity.Producto, error) {
	var p entity.Producto
	err := row.Scan(
		&p.ID, &p.Codigo, &p.Nombre, &p.Descripcion, &p.Cantidad, &p.Estado, &p.Precio,
		&p.FechaCaducidad, &p.StockMinimo, &p.StockMaximo, &p.PuntoReorden, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto.
func (r *ProductoRepo) GetByID(id string) (*entity.Producto, error) {
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = $1`
	p, err := scanProducto(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return p, nil
}

// GetByIDs carga el snapshot de todos los productos pedidos en una sola
// lectura.
func (r *ProductoRepo) GetByIDs(ids []string) (map[string]*entity.Producto, error) {
	return r.getByIDs(ids, false)
}

// GetByIDsForUpdate igual que GetByIDs pero con SELECT FOR UPDATE para
// serializar decrementos concurrentes sobre las mismas filas.
func (r *ProductoRepo) GetByIDsForUpdate(ids []string) (map[string]*entity.Producto, error) {
	return r.getByIDs(ids, true)
}

func (r *ProductoRepo) getByIDs(ids []string, forUpdate bool) (map[string]*entity.Producto, error) {
	if len(ids) == 0 {
		return map[string]*entity.Producto{}, nil
	}
	query := `SELECT ` + productoColumns + ` FROM productos WHERE id = ANY($1) ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("get productos: %w", err)
	}
	defer rows.Close()
	out := make(map[string]*entity.Producto, len(ids))
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ApplyDeltas emite las escrituras por producto como un batch pipelineado
// dentro de la transacción: cada update toca una fila disjunta y la
// transacción, no el fan-out, es la frontera de consistencia.
func (r *ProductoRepo) ApplyDeltas(deltas []repository.StockDelta) error {
	b := &pgx.Batch{}
	for _, d := range deltas {
		b.Queue(`
			UPDATE productos
			SET cantidad = cantidad + $1, estado = $2, updated_at = now()
			WHERE id = $3`,
			d.Delta, d.Estado, d.ProductoID,
		)
	}
	br := r.q.SendBatch(context.Background(), b)
	defer br.Close()
	for range deltas {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("apply stock delta: %w", err)
		}
	}
	return br.Close()
}
