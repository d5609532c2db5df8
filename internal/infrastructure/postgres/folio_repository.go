package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

var _ repository.FolioRepository = (*FolioRepo)(nil)

// FolioRepo implementación sobre PostgreSQL (usable con pool o tx).
type FolioRepo struct {
	q Querier
}

// NewFolioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioRepository(q Querier) *FolioRepo {
	return &FolioRepo{q: q}
}

func (r *FolioRepo) getConfig(tipo string, forUpdate bool) (*entity.FolioConfig, error) {
	query := `
		SELECT id, tipo, serie_actual, proximo_folio, updated_at
		FROM folio_config WHERE tipo = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var c entity.FolioConfig
	err := r.q.QueryRow(context.Background(), query, tipo).Scan(
		&c.ID, &c.Tipo, &c.SerieActual, &c.ProximoFolio, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folio config: %w", err)
	}
	return &c, nil
}

// GetConfig lee la configuración del consecutivo.
func (r *FolioRepo) GetConfig(tipo string) (*entity.FolioConfig, error) {
	return r.getConfig(tipo, false)
}

// GetConfigForUpdate lee la configuración bloqueando la fila; la reserva del
// siguiente folio debe hacerse bajo este lock.
func (r *FolioRepo) GetConfigForUpdate(tipo string) (*entity.FolioConfig, error) {
	return r.getConfig(tipo, true)
}

// AdvanceTo sube el consecutivo de forma monotónica. GREATEST garantiza que
// el valor final nunca decrece sin importar el orden de ejecuciones
// concurrentes, por eso la reconciliación es segura e idempotente.
func (r *FolioRepo) AdvanceTo(tipo string, proximo int64) error {
	query := `
		UPDATE folio_config
		SET proximo_folio = GREATEST(proximo_folio, $2), updated_at = now()
		WHERE tipo = $1`
	if _, err := r.q.Exec(context.Background(), query, tipo, proximo); err != nil {
		return fmt.Errorf("advance folio: %w", err)
	}
	return nil
}
