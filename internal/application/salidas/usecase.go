package salidas

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/medsalud/almacen-api/internal/application/dto"
	"github.com/medsalud/almacen-api/internal/domain"
	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
	"github.com/medsalud/almacen-api/pkg/logger"
)

// DefaultListCap tope fijo del total reportado en listados, sin importar el
// tamaño real de la tabla.
const DefaultListCap = 30

// Motivos registrados en el historial de inventario.
const (
	motivoSalida      = "salida de almacén"
	motivoReversaEdit = "reversa por edición de salida"
	motivoEdicion     = "edición de salida"
	motivoReversaBaja = "reversa por eliminación de salida"
)

// UseCase orquesta el ciclo de vida de las salidas: alta, reemplazo completo,
// eliminación y lecturas. Toda mutación corre en exactamente una transacción;
// esa transacción es la unidad de aislamiento.
type UseCase struct {
	tx           TxRunner
	salidaRepo   repository.SalidaRepository
	productoRepo repository.ProductoRepository
	loteRepo     repository.LoteRepository
	folioRepo    repository.FolioRepository
	clienteRepo  repository.ClienteRepository
	authz        Authorizer
	pdf          PDFGenerator
	log          *logger.Logger
	listCap      int
}

// NewUseCase construye el orquestador. Los repositorios recibidos aquí van
// atados al pool (lecturas y reconciliación post-commit); las mutaciones
// reciben repos atados a la tx vía TxRunner.
func NewUseCase(
	tx TxRunner,
	salidaRepo repository.SalidaRepository,
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	folioRepo repository.FolioRepository,
	clienteRepo repository.ClienteRepository,
	authz Authorizer,
	pdf PDFGenerator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		tx:           tx,
		salidaRepo:   salidaRepo,
		productoRepo: productoRepo,
		loteRepo:     loteRepo,
		folioRepo:    folioRepo,
		clienteRepo:  clienteRepo,
		authz:        authz,
		pdf:          pdf,
		log:          log,
		listCap:      DefaultListCap,
	}
}

// Create registra una salida: valida stock y lotes en lote, reserva o acepta
// folio, verifica unicidad, persiste cabecera y líneas, aplica decrementos y
// escribe auditoría, todo en una transacción. Si se usó un folio manual que
// rebasa el consecutivo, reconcilia después del commit.
func (uc *UseCase) Create(ctx context.Context, usuarioID string, req dto.CreateSalidaRequest) (*dto.SalidaResponse, error) {
	s, err := uc.buildSalida(usuarioID, req)
	if err != nil {
		return nil, err
	}

	var asignado folioAsignado
	err = uc.tx.Run(ctx, func(
		salidaRepo repository.SalidaRepository,
		productoRepo repository.ProductoRepository,
		loteRepo repository.LoteRepository,
		folioRepo repository.FolioRepository,
		historialRepo repository.HistorialRepository,
	) error {
		now := time.Now()

		plan, err := planConsumo(productoRepo, loteRepo, s, motivoSalida, now)
		if err != nil {
			return err
		}

		asignado, err = reserveOrAcceptFolio(folioRepo, req.Folio, req.Serie)
		if err != nil {
			return err
		}
		s.Folio = asignado.Folio
		s.Serie = asignado.Serie

		exists, err := salidaRepo.ExistsFolio(s.Serie, s.Folio, "")
		if err != nil {
			return err
		}
		if exists {
			return domain.Validationf("ya existe una salida con folio %q en la serie %q", s.Folio, s.Serie)
		}

		if err := salidaRepo.Create(s); err != nil {
			return err
		}
		for _, d := range s.Detalles {
			if err := salidaRepo.CreateDetalle(d); err != nil {
				return err
			}
		}
		return plan.execute(productoRepo, loteRepo, historialRepo)
	})
	if err != nil {
		return nil, err
	}

	if asignado.RebasaConsecutivo {
		uc.reconcileAfterCommit(s.Serie)
	}
	return uc.toResponse(s), nil
}

// Replace reemplaza una salida completa: revierte todos los efectos de las
// líneas anteriores, borra esas líneas, aplica los cambios de cabecera y
// vuelve a correr la secuencia de alta para las líneas nuevas. Si la
// validación de stock falla con las líneas nuevas, el rollback deja la
// salida original intacta, incluida la reversa. Cambiar folio o fecha del
// documento exige la capacidad salidas/folio_edit.
func (uc *UseCase) Replace(ctx context.Context, usuarioID, rol, id string, req dto.ReplaceSalidaRequest) (*dto.SalidaResponse, error) {
	nueva, err := uc.buildSalida(usuarioID, req)
	if err != nil {
		return nil, err
	}

	var result *entity.Salida
	err = uc.tx.Run(ctx, func(
		salidaRepo repository.SalidaRepository,
		productoRepo repository.ProductoRepository,
		loteRepo repository.LoteRepository,
		folioRepo repository.FolioRepository,
		historialRepo repository.HistorialRepository,
	) error {
		now := time.Now()

		existing, err := salidaRepo.GetWithDetalles(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.NotFound("salida", id)
		}
		// La reversa y la edición se atribuyen a quien edita, no al creador.
		existing.UsuarioID = usuarioID

		reversa, err := planReversa(productoRepo, loteRepo, existing, motivoReversaEdit, now)
		if err != nil {
			return err
		}
		if err := reversa.execute(productoRepo, loteRepo, historialRepo); err != nil {
			return err
		}
		if err := salidaRepo.DeleteDetalles(id); err != nil {
			return err
		}

		folioChanged := (req.Folio != "" && req.Folio != existing.Folio) ||
			(req.Serie != "" && req.Serie != existing.Serie)
		fechaChanged := req.FechaCreacion != nil && !req.FechaCreacion.Equal(existing.FechaCreacion)
		if folioChanged || fechaChanged {
			if !uc.authz.CanPerform(rol, "salidas", "folio_edit") {
				return domain.Forbidden("SALIDAS_FOLIO_EDIT")
			}
		}
		if folioChanged {
			// Folio vacío conserva el número emitido; solo cambia la serie.
			if req.Folio != "" {
				existing.Folio = req.Folio
			}
			if req.Serie != "" {
				existing.Serie = req.Serie
			}
			exists, err := salidaRepo.ExistsFolio(existing.Serie, existing.Folio, id)
			if err != nil {
				return err
			}
			if exists {
				return domain.Validationf("ya existe una salida con folio %q en la serie %q", existing.Folio, existing.Serie)
			}
		}
		if req.FechaCreacion != nil {
			existing.FechaCreacion = *req.FechaCreacion
		}
		existing.TipoSalidaID = nueva.TipoSalidaID
		existing.ClienteID = nueva.ClienteID
		existing.ClienteNombre = nueva.ClienteNombre
		existing.Observaciones = nueva.Observaciones
		existing.Total = nueva.Total
		existing.UpdatedAt = now
		if err := salidaRepo.UpdateHeader(existing); err != nil {
			return err
		}

		existing.Detalles = nueva.Detalles
		for _, d := range existing.Detalles {
			d.SalidaID = existing.ID
			if err := salidaRepo.CreateDetalle(d); err != nil {
				return err
			}
		}
		plan, err := planConsumo(productoRepo, loteRepo, existing, motivoEdicion, now)
		if err != nil {
			return err
		}
		if err := plan.execute(productoRepo, loteRepo, historialRepo); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ediciones pueden mover el máximo real en cualquier dirección.
	uc.reconcileAfterCommit(result.Serie)
	return uc.toResponse(result), nil
}

// Delete revierte todos los efectos de stock y lote de la salida, elimina
// líneas y cabecera, y reconcilia el consecutivo después del commit.
func (uc *UseCase) Delete(ctx context.Context, usuarioID, id string) (*dto.DeleteSalidaResponse, error) {
	var out dto.DeleteSalidaResponse
	var serie string
	err := uc.tx.Run(ctx, func(
		salidaRepo repository.SalidaRepository,
		productoRepo repository.ProductoRepository,
		loteRepo repository.LoteRepository,
		folioRepo repository.FolioRepository,
		historialRepo repository.HistorialRepository,
	) error {
		now := time.Now()

		existing, err := salidaRepo.GetWithDetalles(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.NotFound("salida", id)
		}
		existing.UsuarioID = usuarioID

		reversa, err := planReversa(productoRepo, loteRepo, existing, motivoReversaBaja, now)
		if err != nil {
			return err
		}
		if err := reversa.execute(productoRepo, loteRepo, historialRepo); err != nil {
			return err
		}
		if err := salidaRepo.DeleteDetalles(id); err != nil {
			return err
		}
		if err := salidaRepo.Delete(id); err != nil {
			return err
		}
		out = dto.DeleteSalidaResponse{
			Folio:              existing.Folio,
			Serie:              existing.Serie,
			DetallesEliminados: len(existing.Detalles),
		}
		serie = existing.Serie
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.reconcileAfterCommit(serie)
	return &out, nil
}

// Get devuelve una salida con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.SalidaResponse, error) {
	s, err := uc.salidaRepo.GetWithDetalles(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("salida", id)
	}
	return uc.toResponse(s), nil
}

// List devuelve una página de salidas. El conteo y la página se consultan
// en paralelo contra el pool; el total reportado se topa en listCap.
func (uc *UseCase) List(ctx context.Context, req dto.ListSalidasRequest) (*dto.ListSalidasResponse, error) {
	req.DefaultPage()
	filter, err := uc.buildFilter(req)
	if err != nil {
		return nil, err
	}

	var (
		items []*entity.Salida
		total int
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = uc.salidaRepo.List(filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.salidaRepo.Count(filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if total > uc.listCap {
		total = uc.listCap
	}
	resp := &dto.ListSalidasResponse{
		Items: make([]dto.SalidaResponse, 0, len(items)),
		Pagination: dto.PageResponse{
			Page:    req.Page,
			Limit:   req.Limit,
			Total:   total,
			HasNext: req.Page*req.Limit < total,
			HasPrev: req.Page > 1,
		},
	}
	for _, s := range items {
		resp.Items = append(resp.Items, *uc.toResponse(s))
	}
	return resp, nil
}

// RenderPDF genera la representación imprimible del documento.
func (uc *UseCase) RenderPDF(ctx context.Context, id string) ([]byte, string, error) {
	s, err := uc.salidaRepo.GetWithDetalles(id)
	if err != nil {
		return nil, "", err
	}
	if s == nil {
		return nil, "", domain.NotFound("salida", id)
	}
	pdf, err := uc.pdf.RenderSalida(s)
	if err != nil {
		return nil, "", err
	}
	name := "salida-" + s.Folio + ".pdf"
	if s.Serie != "" {
		name = "salida-" + s.Serie + "-" + s.Folio + ".pdf"
	}
	return pdf, name, nil
}

// buildSalida valida la parte del request que no requiere la transacción
// (referencias de catálogo, forma de las líneas) y arma la entidad con sus
// detalles. La validación autoritativa de stock/lotes ocurre dentro de la tx.
func (uc *UseCase) buildSalida(usuarioID string, req dto.CreateSalidaRequest) (*entity.Salida, error) {
	if req.TipoSalidaID == "" {
		return nil, domain.Validationf("el tipo de salida es requerido")
	}
	if len(req.Detalles) == 0 {
		return nil, domain.Validationf("la salida requiere al menos una línea")
	}

	clienteNombre := ""
	if req.ClienteID != nil {
		cliente, err := uc.clienteRepo.GetByID(*req.ClienteID)
		if err != nil {
			return nil, err
		}
		if cliente == nil {
			return nil, domain.NotFound("cliente", *req.ClienteID)
		}
		clienteNombre = cliente.Nombre
	}

	ids := make([]string, 0, len(req.Detalles))
	for i, line := range req.Detalles {
		if line.ProductoID == "" {
			return nil, domain.Validationf("producto requerido en la línea %d", i+1)
		}
		if !line.Cantidad.GreaterThan(decimal.Zero) {
			return nil, domain.Validationf("la cantidad debe ser mayor a cero (línea %d)", i+1)
		}
		if line.Precio.LessThan(decimal.Zero) {
			return nil, domain.Validationf("el precio no puede ser negativo (línea %d)", i+1)
		}
		ids = append(ids, line.ProductoID)
	}

	productos, err := uc.productoRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &entity.Salida{
		ID:            uuid.New().String(),
		TipoSalidaID:  req.TipoSalidaID,
		ClienteID:     req.ClienteID,
		ClienteNombre: clienteNombre,
		UsuarioID:     usuarioID,
		Observaciones: req.Observaciones,
		Estado:        entity.SalidaEstadoCompletada,
		FechaCreacion: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.FechaCreacion != nil {
		s.FechaCreacion = *req.FechaCreacion
	}

	total := decimal.Zero
	for i, line := range req.Detalles {
		p, ok := productos[line.ProductoID]
		if !ok {
			return nil, domain.NotFound("producto", line.ProductoID)
		}
		precio := line.Precio
		if precio.IsZero() {
			precio = p.Precio
		}
		d := &entity.SalidaDetalle{
			ID:             uuid.New().String(),
			SalidaID:       s.ID,
			ProductoID:     line.ProductoID,
			ProductoNombre: p.Nombre,
			LoteID:         line.LoteID,
			Cantidad:       line.Cantidad,
			Precio:         precio,
			Orden:          i + 1,
		}
		total = total.Add(d.Subtotal())
		s.Detalles = append(s.Detalles, d)
	}
	s.Total = total
	return s, nil
}

func (uc *UseCase) buildFilter(req dto.ListSalidasRequest) (repository.SalidaListFilter, error) {
	f := repository.SalidaListFilter{
		Search:       req.Search,
		TipoSalidaID: req.TipoSalidaID,
		ClienteID:    req.ClienteID,
		Sort:         req.Sort,
		Desc:         req.Dir != "asc",
		Limit:        req.Limit,
		Offset:       req.Offset(),
	}
	if f.Sort == "" {
		f.Sort = repository.SalidaSortFecha
	}
	const layout = "2006-01-02"
	if req.FechaDesde != "" {
		t, err := time.Parse(layout, req.FechaDesde)
		if err != nil {
			return f, domain.Validationf("fecha_desde inválida: %q", req.FechaDesde)
		}
		f.FechaDesde = &t
	}
	if req.FechaHasta != "" {
		t, err := time.Parse(layout, req.FechaHasta)
		if err != nil {
			return f, domain.Validationf("fecha_hasta inválida: %q", req.FechaHasta)
		}
		f.FechaHasta = &t
	}
	return f, nil
}

func (uc *UseCase) toResponse(s *entity.Salida) *dto.SalidaResponse {
	resp := &dto.SalidaResponse{
		ID:            s.ID,
		Folio:         s.Folio,
		Serie:         s.Serie,
		TipoSalidaID:  s.TipoSalidaID,
		ClienteID:     s.ClienteID,
		ClienteNombre: s.ClienteNombre,
		UsuarioID:     s.UsuarioID,
		Total:         s.Total,
		Observaciones: s.Observaciones,
		Estado:        s.Estado,
		FechaCreacion: s.FechaCreacion,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for _, d := range s.Detalles {
		resp.Detalles = append(resp.Detalles, dto.SalidaDetalleResponse{
			ID:             d.ID,
			ProductoID:     d.ProductoID,
			ProductoNombre: d.ProductoNombre,
			LoteID:         d.LoteID,
			Cantidad:       d.Cantidad,
			Precio:         d.Precio,
			Subtotal:       d.Subtotal(),
			Orden:          d.Orden,
			CaducidadLote:  d.CaducidadLote,
		})
	}
	return resp
}
