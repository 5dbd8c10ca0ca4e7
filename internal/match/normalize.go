package match

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ErrMissingFields is returned when either the brand or the business description is blank.
var ErrMissingFields = errors.New("marca y descripción son obligatorias")

// Query is a normalized trademark consultation.
type Query struct {
	Brand       string
	Description string
}

// NormalizeQuery trims and validates the raw request fields. The brand is uppercased
// because the registry search is case-insensitive and the AI prompt reads better with a
// canonical spelling.
func NormalizeQuery(marca, descripcion string) (Query, error) {
	brand := collapse(marca)
	desc := collapse(descripcion)
	if brand == "" || desc == "" {
		return Query{}, ErrMissingFields
	}
	return Query{
		Brand:       strings.ToUpper(brand),
		Description: desc,
	}, nil
}

// CacheKey identifies the advisor input. The brand length prefix keeps the key
// unambiguous whatever the description contains.
func (q Query) CacheKey() string {
	var b strings.Builder
	b.WriteString("advisor:")
	b.WriteString(strconv.Itoa(len(q.Brand)))
	b.WriteByte(':')
	b.WriteString(q.Brand)
	b.WriteByte('|')
	b.WriteString(q.Description)
	return b.String()
}

// NormalizeBrand applies the brand half of NormalizeQuery on its own.
func NormalizeBrand(marca string) string {
	return strings.ToUpper(collapse(marca))
}

func collapse(value string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(value), " ")
}
