package salidas

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
)

// ledgerPlan escrituras pendientes de una mutación: deltas de stock por
// producto, deltas por lote y entradas de auditoría. Se calcula completo
// bajo los locks de fila y se ejecuta después como una sola unidad lógica.
type ledgerPlan struct {
	stockDeltas []repository.StockDelta
	loteDeltas  []repository.LoteDelta
	historial   []*entity.HistorialInventario
}

// aggregateByProducto suma las cantidades solicitadas por producto. Dos
// líneas del mismo documento pueden tocar el mismo producto; validar línea
// por línea daría falsos negativos.
func aggregateByProducto(detalles []*entity.SalidaDetalle) map[string]decimal.Decimal {
	agg := make(map[string]decimal.Decimal, len(detalles))
	for _, d := range detalles {
		agg[d.ProductoID] = agg[d.ProductoID].Add(d.Cantidad)
	}
	return agg
}

// aggregateByLote suma las cantidades por lote entre todas las líneas que
// designan uno. Un lote puede repartirse en varias líneas.
func aggregateByLote(detalles []*entity.SalidaDetalle) map[string]decimal.Decimal {
	agg := make(map[string]decimal.Decimal)
	for _, d := range detalles {
		if d.LoteID != nil {
			agg[*d.LoteID] = agg[*d.LoteID].Add(d.Cantidad)
		}
	}
	return agg
}

// sortedKeys orden determinista de acceso a filas; dos mutaciones
// concurrentes bloquean en el mismo orden y no se interbloquean.
func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// planConsumo valida y planifica el consumo de una salida: carga en una sola
// lectura bloqueante el snapshot de cada producto y lote afectado, valida
// todo en memoria y deja listos los deltas negativos y la auditoría.
// La validación ocurre al momento del decremento, dentro de la transacción:
// una lectura previa obsoleta solo puede producir un fallo de validación
// reintetable, nunca un sobredecremento.
func planConsumo(
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	s *entity.Salida,
	motivo string,
	now time.Time,
) (*ledgerPlan, error) {
	porProducto := aggregateByProducto(s.Detalles)
	ids := sortedKeys(porProducto)

	productos, err := productoRepo.GetByIDsForUpdate(ids)
	if err != nil {
		return nil, err
	}

	plan := &ledgerPlan{}
	for _, id := range ids {
		solicitado := porProducto[id]
		p, ok := productos[id]
		if !ok {
			return nil, domain.NotFound("producto", id)
		}
		if p.Cantidad.LessThan(solicitado) {
			return nil, domain.Validationf(
				"stock insuficiente para %q: disponible %s, solicitado %s",
				p.Nombre, p.Cantidad.String(), solicitado.String(),
			)
		}
		nueva := p.Cantidad.Sub(solicitado)
		plan.stockDeltas = append(plan.stockDeltas, repository.StockDelta{
			ProductoID: id,
			Delta:      solicitado.Neg(),
			Estado:     entity.DeriveEstado(nueva, p.FechaCaducidad, now),
		})
		plan.historial = append(plan.historial, &entity.HistorialInventario{
			SalidaID:       s.ID,
			ProductoID:     id,
			ProductoNombre: p.Nombre,
			Cantidad:       solicitado,
			StockAnterior:  p.Cantidad,
			StockNuevo:     nueva,
			Motivo:         motivo,
			UsuarioID:      s.UsuarioID,
			CreatedAt:      now,
		})
	}

	if err := planLotes(loteRepo, s.Detalles, plan, true); err != nil {
		return nil, err
	}
	return plan, nil
}

// planReversa planifica la restauración exacta de los efectos de una salida
// (inversa del consumo) para ediciones y eliminaciones. No valida
// disponibilidad: restaurar siempre es posible.
func planReversa(
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	s *entity.Salida,
	motivo string,
	now time.Time,
) (*ledgerPlan, error) {
	porProducto := aggregateByProducto(s.Detalles)
	ids := sortedKeys(porProducto)

	productos, err := productoRepo.GetByIDsForUpdate(ids)
	if err != nil {
		return nil, err
	}

	plan := &ledgerPlan{}
	for _, id := range ids {
		restaurado := porProducto[id]
		p, ok := productos[id]
		if !ok {
			return nil, domain.NotFound("producto", id)
		}
		nueva := p.Cantidad.Add(restaurado)
		plan.stockDeltas = append(plan.stockDeltas, repository.StockDelta{
			ProductoID: id,
			Delta:      restaurado,
			Estado:     entity.DeriveEstado(nueva, p.FechaCaducidad, now),
		})
		plan.historial = append(plan.historial, &entity.HistorialInventario{
			SalidaID:       s.ID,
			ProductoID:     id,
			ProductoNombre: p.Nombre,
			Cantidad:       restaurado,
			StockAnterior:  p.Cantidad,
			StockNuevo:     nueva,
			Motivo:         motivo,
			UsuarioID:      s.UsuarioID,
			CreatedAt:      now,
		})
	}

	if err := planLotes(loteRepo, s.Detalles, plan, false); err != nil {
		return nil, err
	}
	return plan, nil
}

// planLotes valida (solo en consumo) y planifica los deltas por lote. Las
// líneas sin lote designado no pasan por aquí. En consumo congela además la
// caducidad del lote en la línea (snapshot histórico del documento).
func planLotes(
	loteRepo repository.LoteRepository,
	detalles []*entity.SalidaDetalle,
	plan *ledgerPlan,
	consumo bool,
) error {
	porLote := aggregateByLote(detalles)
	if len(porLote) == 0 {
		return nil
	}
	ids := sortedKeys(porLote)

	lotes, err := loteRepo.GetByIDsForUpdate(ids)
	if err != nil {
		return err
	}

	for _, id := range ids {
		cantidad := porLote[id]
		l, ok := lotes[id]
		if !ok {
			return domain.NotFound("lote", id)
		}
		if consumo && l.CantidadDisponible.LessThan(cantidad) {
			return domain.Validationf(
				"lote %q sin disponibilidad suficiente: disponible %s, solicitado %s",
				l.NumeroLote, l.CantidadDisponible.String(), cantidad.String(),
			)
		}
		delta := cantidad
		if consumo {
			delta = cantidad.Neg()
		}
		plan.loteDeltas = append(plan.loteDeltas, repository.LoteDelta{LoteID: id, Delta: delta})
	}

	if consumo {
		for _, d := range detalles {
			if d.LoteID == nil {
				continue
			}
			l := lotes[*d.LoteID]
			if l.ProductoID != d.ProductoID {
				return domain.Validationf("el lote %q no pertenece al producto de la línea", l.NumeroLote)
			}
			d.CaducidadLote = l.FechaCaducidad
		}
	}
	return nil
}

// execute emite las escrituras planificadas dentro de la transacción.
func (p *ledgerPlan) execute(
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	historialRepo repository.HistorialRepository,
) error {
	if len(p.stockDeltas) > 0 {
		if err := productoRepo.ApplyDeltas(p.stockDeltas); err != nil {
			return err
		}
	}
	if len(p.loteDeltas) > 0 {
		if err := loteRepo.ApplyDeltas(p.loteDeltas); err != nil {
			return err
		}
	}
	if len(p.historial) > 0 {
		if err := historialRepo.CreateBatch(p.historial); err != nil {
			return err
		}
	}
	return nil
}
