// Package pdf implementa la exportación del recibo de una orden desde el
// panel de administración.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Vallmark + N° de orden │ Fecha + Estado            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ENVÍO: nombre / teléfono / dirección completa              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Precio | Subtotal                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL en INR                                               │
//	│  FOOTER: tracking + entrega esperada                        │
//	└─────────────────────────────────────────────────────────────┘
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
	"github.com/shopspring/decimal"

	"github.com/vallmark/storefront-client/internal/domain/entity"
	"github.com/vallmark/storefront-client/pkg/format"
)

var (
	colorPrimary = &props.Color{Red: 122, Green: 31, Blue: 68}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReceiptGenerator genera el recibo de una orden usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// GenerateOrderReceipt genera el PDF del recibo y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateOrderReceipt(order *entity.Order) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Vallmark - Recibo de orden", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(shippingRows(order)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(order.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(order)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: marca + número de orden (izq), fecha y estado (der).
func headerRow(order *entity.Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("Vallmark", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Orden "+order.OrderNumber, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(format.DateTime(order.CreatedAt), props.Text{
				Size: 9, Top: 1, Align: align.Right,
			}),
			text.New("Estado: "+string(order.Status), props.Text{
				Size: 9, Top: 9, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func shippingRows(order *entity.Order) []core.Row {
	addr := order.ShippingAddress
	lines := addr.Line1
	if addr.Line2 != "" {
		lines += ", " + addr.Line2
	}
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Envío a: "+addr.FullName+" · "+addr.Phone, props.Text{Size: 9}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s, %s, %s %s", lines, addr.City, addr.State, addr.Zip), props.Text{Size: 9, Color: colorGray}),
		)),
	}
}

func tableHeaderRow() core.Row {
	header := props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary}
	return row.New(7).Add(
		col.New(2).Add(text.New("Cant", header)),
		col.New(6).Add(text.New("Producto", header)),
		col.New(2).Add(text.New("Precio", headerRight())),
		col.New(2).Add(text.New("Subtotal", headerRight())),
	)
}

func headerRight() props.Text {
	return props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Align: align.Right}
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func itemRows(items []entity.OrderItem) []core.Row {
	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		subtotal := it.Price.Mul(decimalFromInt(it.Quantity))
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", it.Quantity), cell)),
			col.New(6).Add(text.New(it.ProductName, cell)),
			col.New(2).Add(text.New(format.INR(it.Price), cellRight)),
			col.New(2).Add(text.New(format.INR(subtotal), cellRight)),
		))
	}
	return rows
}

func totalRow(order *entity.Order) core.Row {
	return row.New(9).Add(
		col.New(8),
		col.New(4).Add(text.New("TOTAL  "+format.INR(order.FinalAmount), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary,
		})),
	)
}

func footerRows(order *entity.Order) []core.Row {
	var rows []core.Row
	if order.TrackingNumber != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Tracking: "+order.TrackingNumber, props.Text{Size: 8, Color: colorGray}),
		)))
	}
	if order.ExpectedDelivery != nil {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Entrega esperada: "+format.Date(*order.ExpectedDelivery), props.Text{Size: 8, Color: colorGray}),
		)))
	}
	return rows
}
