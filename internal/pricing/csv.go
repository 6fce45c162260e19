package pricing

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{"Kategorie", "Bezeichnung", "Menge", "Preis", "Total"}

// WriteCSV writes one semicolon separated row per line item of p, Aluvision
// first, then Pixlip and Zusatz.  Each total uses the same rules as
// Calculate, so the file always adds up to the on-screen figures.
func WriteCSV(w io.Writer, p model.Payload) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	days := p.RentalDays()
	for _, c := range model.Catalogs {
		rules := RulesFor(c)
		for _, it := range p.Items(c) {
			row := []string{
				c.Label(),
				it.Bezeichnung,
				formatNumber(it.Menge.Float()),
				formatNumber(it.Einzelpreis.Float()),
				strconv.FormatFloat(ItemTotal(it, rules, days), 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName is the download name for a project export.
func ExportFileName(projektname string) string {
	name := strings.TrimSpace(projektname)
	if name == "" {
		name = "Projekt"
	}
	return name + ".csv"
}

// formatNumber prints v in its shortest form (2, 2.5, 0.1).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
