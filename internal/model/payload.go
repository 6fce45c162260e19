package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidPayload wraps every structural problem found while decoding or
// validating a project payload.
var ErrInvalidPayload = errors.New("invalid project payload")

// Amount is a quantity or unit price entered in the form.  It decodes from a
// JSON number, a numeric string (decimal comma allowed), null or "".  Values
// that cannot be read as a number become 0 so a half-filled row never makes
// the whole payload unusable.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	v, err := decodeLenientNumber(b)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// Float returns the amount as float64.
func (a Amount) Float() float64 { return float64(a) }

// Length is the profile length in metres exactly as typed by the user.  The
// text is kept so an empty field stays empty across save and load.
type Length string

// UnmarshalJSON accepts a string, a number (kept as its literal) or null.
func (l *Length) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*l = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: laenge: %v", ErrInvalidPayload, err)
		}
		*l = Length(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("%w: laenge: %v", ErrInvalidPayload, err)
		}
		*l = Length(b)
		return nil
	}
	return fmt.Errorf("%w: laenge must be a string or number", ErrInvalidPayload)
}

// Meters reads the leading number of the length, so "3 m" and "2m" are
// 3 and 2.  A decimal comma is accepted.  Empty, unparsable, zero and
// non-finite values yield 1 so the item is priced as a single unit.
func (l Length) Meters() float64 {
	s := strings.Replace(strings.TrimSpace(string(l)), ",", ".", 1)
	v, ok := parseDecimal(leadingNumber.FindString(s))
	if !ok || v == 0 {
		return 1
	}
	return v
}

// leadingNumber matches a decimal literal at the start of a string.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Days is the rental duration of Zusatz items.  Fractions are truncated.
type Days int

// MaxRentalDays bounds mietdauer; larger values are rejected.
const MaxRentalDays = 3650

// UnmarshalJSON implements json.Unmarshaler with the same leniency as Amount.
// Values below one decode to 0 and are normalised to one day by Validate.
func (d *Days) UnmarshalJSON(b []byte) error {
	v, err := decodeLenientNumber(b)
	if err != nil {
		return err
	}
	switch {
	case v > MaxRentalDays:
		return fmt.Errorf("%w: mietdauer %s exceeds %d days", ErrInvalidPayload, bytes.TrimSpace(b), MaxRentalDays)
	case v < 1:
		*d = 0
	default:
		*d = Days(math.Trunc(v))
	}
	return nil
}

// LineItem is one row of a category list inside a project payload.
type LineItem struct {
	Bezeichnung string `json:"bezeichnung"`
	Typ         string `json:"typ"`
	Menge       Amount `json:"menge"`
	Einzelpreis Amount `json:"einzelpreis"`
	Laenge      Length `json:"laenge"`
}

// Payload is the serialised line-item state of a project.
type Payload struct {
	AluvisionKomponenten []LineItem `json:"aluvisionKomponenten"`
	PixlipKomponenten    []LineItem `json:"pixlipKomponenten"`
	Zusatzausstattung    []LineItem `json:"zusatzausstattung"`
	Mietdauer            Days       `json:"mietdauer"`
}

// Items returns the list that belongs to catalog c.
func (p Payload) Items(c Catalog) []LineItem {
	switch c {
	case CatalogAluvision:
		return p.AluvisionKomponenten
	case CatalogPixlip:
		return p.PixlipKomponenten
	case CatalogZusatz:
		return p.Zusatzausstattung
	}
	return nil
}

// SetItems replaces the list that belongs to catalog c.
func (p *Payload) SetItems(c Catalog, items []LineItem) {
	switch c {
	case CatalogAluvision:
		p.AluvisionKomponenten = items
	case CatalogPixlip:
		p.PixlipKomponenten = items
	case CatalogZusatz:
		p.Zusatzausstattung = items
	}
}

// RentalDays is the rental multiplier; anything below one counts as one day.
func (p Payload) RentalDays() int {
	if p.Mietdauer < 1 {
		return 1
	}
	return int(p.Mietdauer)
}

// Validate normalises p in place and reports values no form could have
// produced.  It runs before a payload is stored and after it is loaded.
func (p *Payload) Validate() error {
	if p.Mietdauer < 1 {
		p.Mietdauer = 1
	}
	if p.Mietdauer > MaxRentalDays {
		return fmt.Errorf("%w: mietdauer %d exceeds %d days", ErrInvalidPayload, p.Mietdauer, MaxRentalDays)
	}
	for _, c := range Catalogs {
		items := p.Items(c)
		if items == nil {
			items = []LineItem{}
		}
		for i, it := range items {
			for name, v := range map[string]Amount{"menge": it.Menge, "einzelpreis": it.Einzelpreis} {
				if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
					return fmt.Errorf("%w: %s[%d].%s is not finite", ErrInvalidPayload, c, i, name)
				}
			}
		}
		p.SetItems(c, items)
	}
	return nil
}

// DecodePayload parses and validates a stored or submitted payload.  An
// absent payload (empty input or JSON null) decodes to an empty project.
func DecodePayload(b []byte) (Payload, error) {
	var p Payload
	b = bytes.TrimSpace(b)
	if len(b) > 0 && string(b) != "null" {
		if err := json.Unmarshal(b, &p); err != nil {
			if errors.Is(err, ErrInvalidPayload) {
				return Payload{}, err
			}
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// EncodePayload serialises a validated payload for storage.
func EncodePayload(p Payload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func decodeLenientNumber(b []byte) (float64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return 0, nil
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		v, _ := parseDecimal(s)
		return v, nil
	case c == '-' || (c >= '0' && c <= '9'):
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: expected a number, got %s", ErrInvalidPayload, b)
}

// parseDecimal reads s as a decimal number, accepting a comma as decimal
// separator.  It reports false for empty or non-finite input.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
