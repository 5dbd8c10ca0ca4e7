package match

import (
	"errors"
	"testing"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name      string
		marca     string
		desc      string
		wantBrand string
		wantDesc  string
		wantErr   error
	}{
		{"uppercases brand", "  café luna ", "cafetería de especialidad", "CAFÉ LUNA", "cafetería de especialidad", nil},
		{"collapses whitespace", "tacos\t el  güero", " venta de   tacos ", "TACOS EL GÜERO", "venta de tacos", nil},
		{"missing description", "LUNA", "   ", "", "", ErrMissingFields},
		{"missing brand", "", "software", "", "", ErrMissingFields},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NormalizeQuery(tc.marca, tc.desc)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v got %v", tc.wantErr, err)
			}
			if q.Brand != tc.wantBrand {
				t.Fatalf("expected brand %q got %q", tc.wantBrand, q.Brand)
			}
			if q.Description != tc.wantDesc {
				t.Fatalf("expected description %q got %q", tc.wantDesc, q.Description)
			}
		})
	}
}

func TestCacheKeyIsUnambiguous(t *testing.T) {
	a := Query{Brand: "AB", Description: "C|D"}
	b := Query{Brand: "AB|C", Description: "D"}
	if a.CacheKey() == b.CacheKey() {
		t.Fatalf("expected distinct keys, both were %q", a.CacheKey())
	}
	same := Query{Brand: "AB", Description: "C|D"}
	if a.CacheKey() != same.CacheKey() {
		t.Fatalf("expected identical keys for identical queries")
	}
}
