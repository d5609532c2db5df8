package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

var _ repository.SalidaRepository = (*SalidaRepo)(nil)

// SalidaRepo implementación de SalidaRepository sobre PostgreSQL (usable con
// pool o tx).
type SalidaRepo struct {
	q Querier
}

// NewSalidaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalidaRepository(q Querier) *SalidaRepo {
	return &SalidaRepo{q: q}
}

const salidaColumns = `s.id, s.folio, s.serie, s.tipo_salida_id, s.cliente_id, s.usuario_id,
	s.total, s.observaciones, s.estado, s.fecha_creacion, s.created_at, s.updated_at,
	COALESCE(c.nombre, '')`

func scanSalida(row pgx.Row) (*entity.Salida, error) {
	var s entity.Salida
	err := row.Scan(
		&s.ID, &s.Folio, &s.Serie, &s.TipoSalidaID, &s.ClienteID, &s.UsuarioID,
		&s.Total, &s.Observaciones, &s.Estado, &s.FechaCreacion, &s.CreatedAt, &s.UpdatedAt,
		&s.ClienteNombre,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste la cabecera. Una violación del constraint único
// (serie, folio) se reporta como conflicto: es la red de seguridad real
// cuando dos altas concurrentes reservaron el mismo candidato.
func (r *SalidaRepo) Create(s *entity.Salida) error {
	query := `
		INSERT INTO salidas (id, folio, serie, tipo_salida_id, cliente_id, usuario_id,
			total, observaciones, estado, fecha_creacion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Folio, s.Serie, s.TipoSalidaID, s.ClienteID, s.UsuarioID,
		s.Total, s.Observaciones, s.Estado, s.FechaCreacion, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflictf("folio %q ya emitido en la serie %q", s.Folio, s.Serie)
		}
		return fmt.Errorf("create salida: %w", err)
	}
	return nil
}

// UpdateHeader actualiza los campos de cabecera.
func (r *SalidaRepo) UpdateHeader(s *entity.Salida) error {
	query := `
		UPDATE salidas
		SET folio = $2, serie = $3, tipo_salida_id = $4, cliente_id = $5,
			total = $6, observaciones = $7, estado = $8, fecha_creacion = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Folio, s.Serie, s.TipoSalidaID, s.ClienteID,
		s.Total, s.Observaciones, s.Estado, s.FechaCreacion, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflictf("folio %q ya emitido en la serie %q", s.Folio, s.Serie)
		}
		return fmt.Errorf("update salida: %w", err)
	}
	return nil
}

// Delete elimina la cabecera. Las líneas se borran antes con DeleteDetalles.
func (r *SalidaRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM salidas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete salida: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera con el nombre del cliente.
func (r *SalidaRepo) GetByID(id string) (*entity.Salida, error) {
	query := `
		SELECT ` + salidaColumns + `
		FROM salidas s
		LEFT JOIN clientes c ON c.id = s.cliente_id
		WHERE s.id = $1`
	s, err := scanSalida(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get salida: %w", err)
	}
	return s, nil
}

// GetWithDetalles obtiene la cabecera y sus líneas en orden de captura.
func (r *SalidaRepo) GetWithDetalles(id string) (*entity.Salida, error) {
	s, err := r.GetByID(id)
	if err != nil || s == nil {
		return s, err
	}
	query := `
		SELECT d.id, d.salida_id, d.producto_id, d.lote_id, d.cantidad, d.precio,
			d.orden, d.caducidad_lote, COALESCE(p.nombre, '')
		FROM salida_detalles d
		LEFT JOIN productos p ON p.id = d.producto_id
		WHERE d.salida_id = $1
		ORDER BY d.orden`
	rows, err := r.q.Query(context.Background(), query, id)
	if err != nil {
		return nil, fmt.Errorf("get detalles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.SalidaDetalle
		if err := rows.Scan(&d.ID, &d.SalidaID, &d.ProductoID, &d.LoteID, &d.Cantidad,
			&d.Precio, &d.Orden, &d.CaducidadLote, &d.ProductoNombre); err != nil {
			return nil, fmt.Errorf("scan detalle: %w", err)
		}
		s.Detalles = append(s.Detalles, &d)
	}
	return s, rows.Err()
}

// CreateDetalle persiste una línea.
func (r *SalidaRepo) CreateDetalle(d *entity.SalidaDetalle) error {
	query := `
		INSERT INTO salida_detalles (id, salida_id, producto_id, lote_id, cantidad, precio, orden, caducidad_lote)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.SalidaID, d.ProductoID, d.LoteID, d.Cantidad, d.Precio, d.Orden, d.CaducidadLote,
	)
	if err != nil {
		return fmt.Errorf("create detalle: %w", err)
	}
	return nil
}

// DeleteDetalles borra todas las líneas de una salida.
func (r *SalidaRepo) DeleteDetalles(salidaID string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM salida_detalles WHERE salida_id = $1`, salidaID); err != nil {
		return fmt.Errorf("delete detalles: %w", err)
	}
	return nil
}

// ExistsFolio verifica unicidad de (serie, folio), excluyendo opcionalmente
// un documento.
func (r *SalidaRepo) ExistsFolio(serie, folio, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM salidas
			WHERE serie = $1 AND folio = $2 AND ($3 = '' OR id <> $3)
		)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, serie, folio, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists folio: %w", err)
	}
	return exists, nil
}

// MaxNumericFolio máximo folio puramente numérico de la serie; los códigos
// manuales no numéricos quedan fuera del cast, igual que los numéricos de
// más de 18 dígitos que no caben en bigint.
func (r *SalidaRepo) MaxNumericFolio(serie string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(folio::bigint), 0)
		FROM salidas
		WHERE serie = $1 AND folio ~ '^[0-9]+$' AND length(folio) <= 18`
	var max int64
	if err := r.q.QueryRow(context.Background(), query, serie).Scan(&max); err != nil {
		return 0, fmt.Errorf("max numeric folio: %w", err)
	}
	return max, nil
}

// buildWhere arma el WHERE compartido por List y Count.
func buildWhere(f repository.SalidaListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	pos := 1
	if f.Search != "" {
		where += fmt.Sprintf(" AND (s.folio ILIKE $%d OR s.observaciones ILIKE $%d OR c.nombre ILIKE $%d)", pos, pos, pos)
		args = append(args, "%"+f.Search+"%")
		pos++
	}
	if f.TipoSalidaID != "" {
		where += fmt.Sprintf(" AND s.tipo_salida_id = $%d", pos)
		args = append(args, f.TipoSalidaID)
		pos++
	}
	if f.ClienteID != "" {
		where += fmt.Sprintf(" AND s.cliente_id = $%d", pos)
		args = append(args, f.ClienteID)
		pos++
	}
	if f.FechaDesde != nil {
		where += fmt.Sprintf(" AND s.fecha_creacion >= $%d", pos)
		args = append(args, *f.FechaDesde)
		pos++
	}
	if f.FechaHasta != nil {
		where += fmt.Sprintf(" AND s.fecha_creacion <= $%d", pos)
		args = append(args, *f.FechaHasta)
		pos++
	}
	return where, args
}

// orderBy traduce el modo de ordenamiento. Para folio, los folios puramente
// numéricos se ordenan como enteros ("9" antes que "10") y los códigos
// manuales no numéricos caen a orden lexicográfico al final. El cast a
// bigint solo aplica a folios de hasta 18 dígitos; los más largos no caben
// y se tratan como códigos lexicográficos.
func orderBy(f repository.SalidaListFilter) string {
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	switch f.Sort {
	case repository.SalidaSortFolio:
		return fmt.Sprintf(
			" ORDER BY (s.folio ~ '^[0-9]+$' AND length(s.folio) <= 18) DESC,"+
				" CASE WHEN s.folio ~ '^[0-9]+$' AND length(s.folio) <= 18 THEN s.folio::bigint END %s, s.folio %s",
			dir, dir,
		)
	case repository.SalidaSortTotal:
		return fmt.Sprintf(" ORDER BY s.total %s, s.created_at DESC", dir)
	default:
		return fmt.Sprintf(" ORDER BY s.fecha_creacion %s, s.created_at %s", dir, dir)
	}
}

// List devuelve la página solicitada (sin detalles).
func (r *SalidaRepo) List(f repository.SalidaListFilter) ([]*entity.Salida, error) {
	where, args := buildWhere(f)
	query := `
		SELECT ` + salidaColumns + `
		FROM salidas s
		LEFT JOIN clientes c ON c.id = s.cliente_id` + where + orderBy(f) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list salidas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Salida
	for rows.Next() {
		s, err := scanSalida(rows)
		if err != nil {
			return nil, fmt.Errorf("scan salida: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Count conteo real del filtro; el tope lo aplica la capa de aplicación.
func (r *SalidaRepo) Count(f repository.SalidaListFilter) (int, error) {
	where, args := buildWhere(f)
	query := `
		SELECT COUNT(*)
		FROM salidas s
		LEFT JOIN clientes c ON c.id = s.cliente_id` + where
	var total int
	if err := r.q.QueryRow(context.Background(), query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count salidas: %w", err)
	}
	return total, nil
}
