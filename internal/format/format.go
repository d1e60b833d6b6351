// Package format renders raw NF-e values in Brazilian conventions.
//
// Every function here is total: input that cannot be parsed falls back to a
// kind-specific default instead of returning an error.
package format

import (
	"regexp"
	"strings"
	"time"

	"github.com/rezonia/nfe-converter/internal/decimal"
)

// Kind selects how a raw value is rendered
type Kind string

const (
	KindText     Kind = "text"
	KindCurrency Kind = "currency"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindCNPJ     Kind = "cnpj"
	KindCPF      Kind = "cpf"
	KindTaxID    Kind = "cnpj_cpf"
)

// DefaultPlaces is the number of decimal places used by KindNumber
const DefaultPlaces = 2

const (
	zeroCurrency = "R$ 0,00"
	zeroNumber   = "0,00"
	isoDate      = "2006-01-02"
	brDate       = "02/01/2006"
)

var offsetSuffix = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)

// Kinds lists every supported kind
func Kinds() []Kind {
	return []Kind{KindText, KindCurrency, KindNumber, KindDate, KindCNPJ, KindCPF, KindTaxID}
}

// ParseKind maps a name to a Kind; unknown names map to KindText
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k
		}
	}
	return KindText
}

// Value formats raw according to kind. Empty input always yields "".
func Value(raw string, kind Kind) string {
	if raw == "" {
		return ""
	}

	switch kind {
	case KindCurrency:
		return Currency(raw)
	case KindNumber:
		return Number(raw, DefaultPlaces)
	case KindDate:
		return Date(raw)
	case KindCNPJ:
		return CNPJ(raw)
	case KindCPF:
		return CPF(raw)
	case KindTaxID:
		return TaxID(raw)
	default:
		return raw
	}
}

// Currency renders "1234.5" as "R$ 1.234,50"
func Currency(raw string) string {
	d, err := decimal.FromString(raw)
	if err != nil {
		return zeroCurrency
	}
	return decimal.FormatBRL(d)
}

// Number renders raw with the given decimal places and ',' as separator
func Number(raw string, places int32) string {
	d, err := decimal.FromString(raw)
	if err != nil {
		return zeroNumber
	}
	return decimal.FormatPlain(d, places, ",")
}

// Date turns "2024-01-15T10:30:00-03:00" into "15/01/2024".
// Values that are not a calendar date once the time and offset are removed
// are returned in their stripped form.
func Date(raw string) string {
	if raw == "" {
		return ""
	}
	s, _, _ := strings.Cut(raw, "T")
	s = offsetSuffix.ReplaceAllString(s, "")
	if len(s) != len(isoDate) {
		return s
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return s
	}
	return t.Format(brDate)
}

// CNPJ applies the XX.XXX.XXX/XXXX-XX mask to 14 digits
func CNPJ(raw string) string {
	d := Digits(raw)
	if len(d) != 14 {
		return d
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

// CPF applies the XXX.XXX.XXX-XX mask to 11 digits
func CPF(raw string) string {
	d := Digits(raw)
	if len(d) != 11 {
		return d
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// TaxID masks as CNPJ or CPF depending on the digit count
func TaxID(raw string) string {
	d := Digits(raw)
	switch len(d) {
	case 14:
		return CNPJ(d)
	case 11:
		return CPF(d)
	default:
		return d
	}
}

// AccessKey removes every "NFe" marker from an infNFe Id attribute
func AccessKey(raw string) string {
	return strings.ReplaceAll(raw, "NFe", "")
}

// Digits keeps only ASCII digits
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
