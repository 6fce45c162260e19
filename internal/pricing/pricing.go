// Package pricing computes booth totals from a project's line items.  Every
// function here is pure: the same payload always yields the same numbers, so
// the server endpoints, the CSV export and the terminal client share it.
package pricing

import (
	"strings"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// Rules selects which multipliers apply to a category.
type Rules struct {
	Rental bool // multiply by the rental duration in days
	Length bool // multiply profile items by their length in metres
}

// RulesFor returns the multiplier rules of catalog c: Aluvision prices
// profiles by length, Zusatz is rented per day, Pixlip uses neither.
func RulesFor(c model.Catalog) Rules {
	switch c {
	case model.CatalogAluvision:
		return Rules{Length: true}
	case model.CatalogZusatz:
		return Rules{Rental: true}
	}
	return Rules{}
}

// LengthPriced reports whether item is a linear profile sold by the metre.
func LengthPriced(item model.LineItem) bool {
	return item.Typ == "Profil" || strings.Contains(item.Bezeichnung, "Linearprofil")
}

// Factor is the length multiplier of item under rules.
func Factor(item model.LineItem, rules Rules) float64 {
	if rules.Length && LengthPriced(item) {
		return item.Laenge.Meters()
	}
	return 1
}

// ItemTotal is menge × einzelpreis × length factor × rental days.
func ItemTotal(item model.LineItem, rules Rules, days int) float64 {
	total := item.Menge.Float() * item.Einzelpreis.Float() * Factor(item, rules)
	if rules.Rental {
		total *= float64(days)
	}
	return total
}

// CategoryTotal sums ItemTotal over items.
func CategoryTotal(items []model.LineItem, rules Rules, days int) float64 {
	var sum float64
	for _, it := range items {
		sum += ItemTotal(it, rules, days)
	}
	return sum
}

// Summary holds the per-category totals and the grand total in EUR.
type Summary struct {
	Aluvision float64 `json:"aluvision"`
	Pixlip    float64 `json:"pixlip"`
	Zusatz    float64 `json:"zusatz"`
	Gesamt    float64 `json:"gesamt"`
}

// Calculate prices every list of p with its category rules.
func Calculate(p model.Payload) Summary {
	days := p.RentalDays()
	s := Summary{
		Aluvision: CategoryTotal(p.AluvisionKomponenten, RulesFor(model.CatalogAluvision), days),
		Pixlip:    CategoryTotal(p.PixlipKomponenten, RulesFor(model.CatalogPixlip), days),
		Zusatz:    CategoryTotal(p.Zusatzausstattung, RulesFor(model.CatalogZusatz), days),
	}
	s.Gesamt = s.Aluvision + s.Pixlip + s.Zusatz
	return s
}

// Category returns the total of catalog c from s.
func (s Summary) Category(c model.Catalog) float64 {
	switch c {
	case model.CatalogAluvision:
		return s.Aluvision
	case model.CatalogPixlip:
		return s.Pixlip
	case model.CatalogZusatz:
		return s.Zusatz
	}
	return 0
}
