package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "consultas.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndGetConsultation(t *testing.T) {
	db := openTestDB(t)

	row := &Consultation{Brand: "LUNA", Description: "cafetería", Viability: 80, Status: "DISPONIBLE", Note: "ok"}
	row.SetClasses([]string{"Clase 43: Restaurantes"})
	row.SetRecommendations([]string{"Registrar", "Proteger logotipo"})
	require.NoError(t, db.SaveConsultation(row))
	require.NotEmpty(t, row.ID)

	got, err := db.GetConsultation(row.ID)
	require.NoError(t, err)
	assert.Equal(t, "LUNA", got.Brand)
	assert.Equal(t, []string{"Clase 43: Restaurantes"}, got.Classes())
	assert.Equal(t, []string{"Registrar", "Proteger logotipo"}, got.Recommendations())
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetConsultationNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetConsultation("missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListConsultationsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, brand := range []string{"A", "B", "C"} {
		row := &Consultation{Brand: brand, Status: "OCUPADA", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.SaveConsultation(row))
	}

	rows, total, err := db.ListConsultations(0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "C", rows[0].Brand)
	assert.Equal(t, "B", rows[1].Brand)

	rows, _, err = db.ListConsultations(2, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Brand)
}

func TestCountByStatus(t *testing.T) {
	db := openTestDB(t)

	for _, status := range []string{"OCUPADA", "OCUPADA", "DISPONIBLE"} {
		require.NoError(t, db.SaveConsultation(&Consultation{Brand: "X", Status: status}))
	}

	counts, err := db.CountByStatus()
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts["OCUPADA"])
	assert.EqualValues(t, 1, counts["DISPONIBLE"])
}

func TestEmptyListsDecode(t *testing.T) {
	row := &Consultation{}
	row.SetClasses(nil)
	assert.Equal(t, "[]", row.ClassesJSON)
	assert.Empty(t, row.Classes())
	assert.Nil(t, (&Consultation{}).Recommendations())
}
