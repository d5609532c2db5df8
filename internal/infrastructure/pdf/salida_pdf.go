// Package pdf genera la representación imprimible del documento de salida
// (vale de salida de almacén) con Maroto v2.
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/medsalud/almacen-api/internal/application/salidas"
	"github.com/medsalud/almacen-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ salidas.PDFGenerator = (*SalidaPDFGenerator)(nil)

// SalidaPDFGenerator implementa salidas.PDFGenerator usando Maroto v2.
type SalidaPDFGenerator struct{}

// NewSalidaPDFGenerator construye el generador.
func NewSalidaPDFGenerator() *SalidaPDFGenerator { return &SalidaPDFGenerator{} }

// RenderSalida genera el PDF del vale de salida y devuelve sus bytes.
func (g *SalidaPDFGenerator) RenderSalida(s *entity.Salida) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Vale de salida de almacén", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, d := range s.Detalles {
		m.AddRows(detalleRow(d))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(s))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y folio + fecha (der).
func headerRow(s *entity.Salida) core.Row {
	folio := s.Folio
	if s.Serie != "" {
		folio = s.Serie + "-" + s.Folio
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New("SALIDA DE ALMACÉN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("Folio: "+folio, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+s.FechaCreacion.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// infoRow: cliente/destino y observaciones.
func infoRow(s *entity.Salida) core.Row {
	destino := s.ClienteNombre
	if destino == "" {
		destino = "—"
	}
	obs := s.Observaciones
	if obs == "" {
		obs = "—"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Destino: "+destino, props.Text{Size: 9, Top: 1}),
			text.New("Observaciones: "+obs, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	header := props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}
	return row.New(7).Add(
		col.New(1).Add(text.New("Cant.", header)),
		col.New(6).Add(text.New("Producto", header)),
		col.New(2).Add(text.New("Lote", header)),
		col.New(1).Add(text.New("P. Unit", header)),
		col.New(2).Add(text.New("Subtotal", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Right,
		})),
	)
}

func detalleRow(d *entity.SalidaDetalle) core.Row {
	lote := "—"
	if d.CaducidadLote != nil {
		lote = "cad. " + d.CaducidadLote.Format("02/01/2006")
	}
	return row.New(6).Add(
		col.New(1).Add(text.New(d.Cantidad.String(), props.Text{Size: 8, Top: 1})),
		col.New(6).Add(text.New(d.ProductoNombre, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(lote, props.Text{Size: 8, Top: 1, Color: colorGray})),
		col.New(1).Add(text.New(d.Precio.StringFixed(2), props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(d.Subtotal().StringFixed(2), props.Text{
			Size: 8, Top: 1, Align: align.Right,
		})),
	)
}

func totalRow(s *entity.Salida) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New("TOTAL: $ "+s.Total.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1, Color: colorPrimary,
			}),
		),
	)
}
