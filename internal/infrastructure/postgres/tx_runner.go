package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsalud/almacen-api/internal/application/salidas"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

var _ salidas.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los
// repositorios del motor de salidas atados a esa tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Ningún estado parcial sobrevive a un error de fn.
func (r *TxRunner) Run(ctx context.Context, fn func(
	salidaRepo repository.SalidaRepository,
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	folioRepo repository.FolioRepository,
	historialRepo repository.HistorialRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewSalidaRepository(tx),
		NewProductoRepository(tx),
		NewLoteRepository(tx),
		NewFolioRepository(tx),
		NewHistorialRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
