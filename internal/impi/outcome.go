package impi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Outcome classifies a registry lookup. Values are the wire strings reported to clients.
type Outcome string

const (
	OutcomeAvailable       Outcome = "DISPONIBLE"
	OutcomeOccupied        Outcome = "OCUPADA"
	OutcomeManualReview    Outcome = "VERIFICAR_MANUAL"
	OutcomeConnectionError Outcome = "ERROR_CONEXION"
	OutcomeTimeoutError    Outcome = "ERROR_TIMEOUT"
	OutcomeUnknownError    Outcome = "ERROR_DESCONOCIDO"
)

// IsError reports whether the outcome describes a failed lookup rather than a result.
func (o Outcome) IsError() bool {
	switch o {
	case OutcomeConnectionError, OutcomeTimeoutError, OutcomeUnknownError:
		return true
	default:
		return false
	}
}

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAvailable, OutcomeOccupied, OutcomeManualReview,
		OutcomeConnectionError, OutcomeTimeoutError, OutcomeUnknownError:
		return true
	default:
		return false
	}
}

// Prober checks whether a brand is already present in a trademark registry.
type Prober interface {
	Probe(ctx context.Context, brand string) Outcome
}

// noResultPhrases are checked first and in order. A page that also carries a results
// table is still reported as available.
var noResultPhrases = []string{
	"no se encontraron registros",
	"sin resultados",
	"0 resultados",
}

var occupancyIndicators = []string{
	"expediente",
	"solicitud",
}

// Classify maps a registry results page to an outcome.
func Classify(body string) Outcome {
	outcome, _ := classify([]byte(body))
	return outcome
}

func classify(body []byte) (Outcome, error) {
	lower := strings.ToLower(string(body))
	for _, phrase := range noResultPhrases {
		if strings.Contains(lower, phrase) {
			return OutcomeAvailable, nil
		}
	}
	for _, indicator := range occupancyIndicators {
		if strings.Contains(lower, indicator) {
			return OutcomeOccupied, nil
		}
	}
	hasTable, err := containsTable(body)
	if err != nil {
		return OutcomeUnknownError, fmt.Errorf("parse registry html: %w", err)
	}
	if hasTable {
		return OutcomeOccupied, nil
	}
	return OutcomeManualReview, nil
}

func containsTable(body []byte) (bool, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			return true
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}
	return walk(doc), nil
}

// transportOutcome maps a failed request to the timeout or connection category.
func transportOutcome(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeoutError
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeoutError
	}
	return OutcomeConnectionError
}
