// Package format concentra el renderizado localizado de montos y fechas
// para las superficies de administración (locale en-IN, moneda INR).
package format

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var enIN = language.MustParse("en-IN")

// printer comparte el printer en-IN; message.Printer es seguro para uso concurrente.
var printer = message.NewPrinter(enIN)

// INR renderiza un monto en rupias con símbolo y agrupación en-IN (ej. ₹1,23,456.50).
func INR(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return printer.Sprint(currency.NarrowSymbol(currency.INR.Amount(f)))
}

// DateTime renderiza fecha y hora en el formato en-IN del panel: día, mes corto, año, 24 h.
func DateTime(t time.Time) string {
	return t.Format("02 Jan 2006, 15:04")
}

// Date renderiza solo la fecha (día, mes corto, año).
func Date(t time.Time) string {
	return t.Format("02 Jan 2006")
}
