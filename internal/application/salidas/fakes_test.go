package salidas_test

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medsalud/almacen-api/internal/application/authz"
	"github.com/medsalud/almacen-api/internal/application/salidas"
	"github.com/medsalud/almacen-api/internal/domain/entity"
	"github.com/medsalud/almacen-api/internal/domain/repository"
	"github.com/medsalud/almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria + repos fake
//
// memStore emula la base de datos: los repos fake leen y escriben copias, y
// fakeTxRunner toma un snapshot antes de cada mutación y lo restaura si la
// función devuelve error, reproduciendo la semántica de rollback.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	productos map[string]*entity.Producto
	lotes     map[string]*entity.Lote
	salidas   map[string]*entity.Salida
	detalles  map[string][]*entity.SalidaDetalle // por salidaID
	folios    map[string]*entity.FolioConfig     // por tipo
	clientes  map[string]*entity.Cliente
	historial []*entity.HistorialInventario
}

func newMemStore() *memStore {
	return &memStore{
		productos: map[string]*entity.Producto{},
		lotes:     map[string]*entity.Lote{},
		salidas:   map[string]*entity.Salida{},
		detalles:  map[string][]*entity.SalidaDetalle{},
		folios:    map[string]*entity.FolioConfig{},
		clientes:  map[string]*entity.Cliente{},
	}
}

func (st *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range st.productos {
		cp := *v
		c.productos[k] = &cp
	}
	for k, v := range st.lotes {
		cp := *v
		c.lotes[k] = &cp
	}
	for k, v := range st.salidas {
		cp := *v
		cp.Detalles = nil
		c.salidas[k] = &cp
	}
	for k, ds := range st.detalles {
		out := make([]*entity.SalidaDetalle, 0, len(ds))
		for _, d := range ds {
			cp := *d
			out = append(out, &cp)
		}
		c.detalles[k] = out
	}
	for k, v := range st.folios {
		cp := *v
		c.folios[k] = &cp
	}
	for k, v := range st.clientes {
		cp := *v
		c.clientes[k] = &cp
	}
	c.historial = make([]*entity.HistorialInventario, 0, len(st.historial))
	for _, h := range st.historial {
		cp := *h
		c.historial = append(c.historial, &cp)
	}
	return c
}

// ── SalidaRepository ──────────────────────────────────────────────────────────

type fakeSalidaRepo struct{ st *memStore }

func (r *fakeSalidaRepo) Create(s *entity.Salida) error {
	cp := *s
	cp.Detalles = nil
	r.st.salidas[s.ID] = &cp
	return nil
}

func (r *fakeSalidaRepo) UpdateHeader(s *entity.Salida) error {
	cp := *s
	cp.Detalles = nil
	r.st.salidas[s.ID] = &cp
	return nil
}

func (r *fakeSalidaRepo) Delete(id string) error {
	delete(r.st.salidas, id)
	return nil
}

func (r *fakeSalidaRepo) GetByID(id string) (*entity.Salida, error) {
	s, ok := r.st.salidas[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSalidaRepo) GetWithDetalles(id string) (*entity.Salida, error) {
	s, err := r.GetByID(id)
	if s == nil || err != nil {
		return nil, err
	}
	ds := r.st.detalles[id]
	s.Detalles = make([]*entity.SalidaDetalle, 0, len(ds))
	for _, d := range ds {
		cp := *d
		s.Detalles = append(s.Detalles, &cp)
	}
	sort.Slice(s.Detalles, func(i, j int) bool { return s.Detalles[i].Orden < s.Detalles[j].Orden })
	return s, nil
}

func (r *fakeSalidaRepo) CreateDetalle(d *entity.SalidaDetalle) error {
	cp := *d
	r.st.detalles[d.SalidaID] = append(r.st.detalles[d.SalidaID], &cp)
	return nil
}

func (r *fakeSalidaRepo) DeleteDetalles(salidaID string) error {
	delete(r.st.detalles, salidaID)
	return nil
}

func (r *fakeSalidaRepo) ExistsFolio(serie, folio, excludeID string) (bool, error) {
	for _, s := range r.st.salidas {
		if s.Serie == serie && s.Folio == folio && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSalidaRepo) collect(f repository.SalidaListFilter) []*entity.Salida {
	items := make([]*entity.Salida, 0, len(r.st.salidas))
	for _, s := range r.st.salidas {
		if f.Search != "" {
			haystack := strings.ToLower(s.Folio + " " + s.Observaciones + " " + s.ClienteNombre)
			if !strings.Contains(haystack, strings.ToLower(f.Search)) {
				continue
			}
		}
		if f.TipoSalidaID != "" && s.TipoSalidaID != f.TipoSalidaID {
			continue
		}
		if f.ClienteID != "" && (s.ClienteID == nil || *s.ClienteID != f.ClienteID) {
			continue
		}
		if f.FechaDesde != nil && s.FechaCreacion.Before(*f.FechaDesde) {
			continue
		}
		if f.FechaHasta != nil && s.FechaCreacion.After(*f.FechaHasta) {
			continue
		}
		cp := *s
		items = append(items, &cp)
	}
	return items
}

func (r *fakeSalidaRepo) List(f repository.SalidaListFilter) ([]*entity.Salida, error) {
	items := r.collect(f)
	sort.Slice(items, func(i, j int) bool {
		less := items[i].FechaCreacion.Before(items[j].FechaCreacion)
		if items[i].FechaCreacion.Equal(items[j].FechaCreacion) {
			less = items[i].Folio < items[j].Folio
		}
		if f.Desc {
			return !less
		}
		return less
	})
	if f.Offset >= len(items) {
		return nil, nil
	}
	items = items[f.Offset:]
	if f.Limit > 0 && f.Limit < len(items) {
		items = items[:f.Limit]
	}
	return items, nil
}

func (r *fakeSalidaRepo) Count(f repository.SalidaListFilter) (int, error) {
	return len(r.collect(f)), nil
}

func (r *fakeSalidaRepo) MaxNumericFolio(serie string) (int64, error) {
	var max int64
	for _, s := range r.st.salidas {
		if s.Serie != serie {
			continue
		}
		// Mismo recorte que el adaptador SQL: solo numéricos de hasta 18
		// dígitos entran al máximo.
		if len(s.Folio) > salidas.MaxFolioDigits {
			continue
		}
		n, err := strconv.ParseInt(s.Folio, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// ── ProductoRepository ────────────────────────────────────────────────────────

type fakeProductoRepo struct{ st *memStore }

func (r *fakeProductoRepo) GetByID(id string) (*entity.Producto, error) {
	p, ok := r.st.productos[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) GetByIDs(ids []string) (map[string]*entity.Producto, error) {
	out := make(map[string]*entity.Producto, len(ids))
	for _, id := range ids {
		if p, ok := r.st.productos[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeProductoRepo) GetByIDsForUpdate(ids []string) (map[string]*entity.Producto, error) {
	return r.GetByIDs(ids)
}

func (r *fakeProductoRepo) ApplyDeltas(deltas []repository.StockDelta) error {
	for _, d := range deltas {
		p := r.st.productos[d.ProductoID]
		p.Cantidad = p.Cantidad.Add(d.Delta)
		p.Estado = d.Estado
	}
	return nil
}

// ── LoteRepository ────────────────────────────────────────────────────────────

type fakeLoteRepo struct{ st *memStore }

func (r *fakeLoteRepo) GetByID(id string) (*entity.Lote, error) {
	l, ok := r.st.lotes[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoteRepo) GetByIDs(ids []string) (map[string]*entity.Lote, error) {
	out := make(map[string]*entity.Lote, len(ids))
	for _, id := range ids {
		if l, ok := r.st.lotes[id]; ok {
			cp := *l
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeLoteRepo) GetByIDsForUpdate(ids []string) (map[string]*entity.Lote, error) {
	return r.GetByIDs(ids)
}

func (r *fakeLoteRepo) ApplyDeltas(deltas []repository.LoteDelta) error {
	for _, d := range deltas {
		l := r.st.lotes[d.LoteID]
		l.CantidadDisponible = l.CantidadDisponible.Add(d.Delta)
	}
	return nil
}

// ── FolioRepository ───────────────────────────────────────────────────────────

type fakeFolioRepo struct{ st *memStore }

func (r *fakeFolioRepo) GetConfig(tipo string) (*entity.FolioConfig, error) {
	cfg, ok := r.st.folios[tipo]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (r *fakeFolioRepo) GetConfigForUpdate(tipo string) (*entity.FolioConfig, error) {
	return r.GetConfig(tipo)
}

func (r *fakeFolioRepo) AdvanceTo(tipo string, proximo int64) error {
	cfg, ok := r.st.folios[tipo]
	if !ok {
		return nil
	}
	if proximo > cfg.ProximoFolio {
		cfg.ProximoFolio = proximo
	}
	return nil
}

// ── HistorialRepository / ClienteRepository ───────────────────────────────────

type fakeHistorialRepo struct{ st *memStore }

func (r *fakeHistorialRepo) CreateBatch(entries []*entity.HistorialInventario) error {
	for _, e := range entries {
		cp := *e
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		r.st.historial = append(r.st.historial, &cp)
	}
	return nil
}

type fakeClienteRepo struct{ st *memStore }

func (r *fakeClienteRepo) GetByID(id string) (*entity.Cliente, error) {
	c, ok := r.st.clientes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// ── TxRunner con snapshot/restore ─────────────────────────────────────────────

type fakeTxRunner struct{ st *memStore }

func (tx *fakeTxRunner) Run(_ context.Context, fn func(
	salidaRepo repository.SalidaRepository,
	productoRepo repository.ProductoRepository,
	loteRepo repository.LoteRepository,
	folioRepo repository.FolioRepository,
	historialRepo repository.HistorialRepository,
) error) error {
	snap := tx.st.clone()
	err := fn(
		&fakeSalidaRepo{st: tx.st},
		&fakeProductoRepo{st: tx.st},
		&fakeLoteRepo{st: tx.st},
		&fakeFolioRepo{st: tx.st},
		&fakeHistorialRepo{st: tx.st},
	)
	if err != nil {
		*tx.st = *snap
	}
	return err
}

// ── PDF stub ──────────────────────────────────────────────────────────────────

type pdfStub struct{}

func (pdfStub) RenderSalida(_ *entity.Salida) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture y seeds
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	st *memStore
	uc *salidas.UseCase
}

func newFixture() *fixture {
	st := newMemStore()
	uc := salidas.NewUseCase(
		&fakeTxRunner{st: st},
		&fakeSalidaRepo{st: st},
		&fakeProductoRepo{st: st},
		&fakeLoteRepo{st: st},
		&fakeFolioRepo{st: st},
		&fakeClienteRepo{st: st},
		authz.NewRolePolicy(),
		pdfStub{},
		logger.Nop(),
	)
	return &fixture{st: st, uc: uc}
}

func seedProducto(st *memStore, id, nombre string, cantidad, precio float64) {
	st.productos[id] = &entity.Producto{
		ID:       id,
		Codigo:   "C-" + id,
		Nombre:   nombre,
		Cantidad: decimal.NewFromFloat(cantidad),
		Estado:   entity.EstadoDisponible,
		Precio:   decimal.NewFromFloat(precio),
	}
}

func seedLote(st *memStore, id, productoID, numero string, disponible float64, caducidad *time.Time) {
	st.lotes[id] = &entity.Lote{
		ID:                 id,
		ProductoID:         productoID,
		NumeroLote:         numero,
		CantidadDisponible: decimal.NewFromFloat(disponible),
		FechaCaducidad:     caducidad,
	}
}

func seedFolioConfig(st *memStore, serie string, proximo int64) {
	st.folios[salidas.TipoMovimientoSalida] = &entity.FolioConfig{
		ID:           uuid.New().String(),
		Tipo:         salidas.TipoMovimientoSalida,
		SerieActual:  serie,
		ProximoFolio: proximo,
	}
}

func seedSalidaEmitida(st *memStore, serie, folio string, fecha time.Time) *entity.Salida {
	s := &entity.Salida{
		ID:            uuid.New().String(),
		Folio:         folio,
		Serie:         serie,
		TipoSalidaID:  "tipo-consumo",
		UsuarioID:     testUsuarioID,
		Estado:        entity.SalidaEstadoCompletada,
		FechaCreacion: fecha,
		CreatedAt:     fecha,
		UpdatedAt:     fecha,
	}
	st.salidas[s.ID] = s
	return s
}

func proximoFolio(st *memStore) int64 {
	return st.folios[salidas.TipoMovimientoSalida].ProximoFolio
}

func stockDe(st *memStore, productoID string) decimal.Decimal {
	return st.productos[productoID].Cantidad
}
