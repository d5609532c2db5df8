package salidas

import (
	"context"

	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad del motor de salidas:
// cualquier error dentro de fn revierte todo (stock, lotes, folio, documento
// y auditoría); ningún estado parcial es observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		salidaRepo repository.SalidaRepository,
		productoRepo repository.ProductoRepository,
		loteRepo repository.LoteRepository,
		folioRepo repository.FolioRepository,
		historialRepo repository.HistorialRepository,
	) error) error
}

// Authorizer chequeo de capacidades delegado al colaborador de autorización
// externo. Se consulta una sola vez por mutación privilegiada (cambiar el
// folio o la fecha de un documento ya emitido).
type Authorizer interface {
	CanPerform(rol, modulo, accion string) bool
}

// PDFGenerator representación imprimible del documento de salida.
type PDFGenerator interface {
	RenderSalida(s *entity.Salida) ([]byte, error)
}
