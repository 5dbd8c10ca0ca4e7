package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Consultation{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveConsultation inserts a consultation, assigning an ID when missing.
func (d *Database) SaveConsultation(c *Consultation) error {
	if d == nil {
		return errors.New("database is nil")
	}
	if c == nil {
		return errors.New("consultation is nil")
	}
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	if c.ClassesJSON == "" {
		c.ClassesJSON = "[]"
	}
	if c.RecommendationsJSON == "" {
		c.RecommendationsJSON = "[]"
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(c).Error
}

// ListConsultations returns a page of consultations, newest first, plus the total count.
func (d *Database) ListConsultations(offset, limit int) ([]Consultation, int64, error) {
	if d == nil {
		return nil, 0, errors.New("database is nil")
	}
	var total int64
	if err := d.gorm.Model(&Consultation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&Consultation{}).Order("created_at DESC").Order("id")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []Consultation
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetConsultation loads one consultation; gorm.ErrRecordNotFound when absent.
func (d *Database) GetConsultation(id string) (*Consultation, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var row Consultation
	if err := d.gorm.First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CountByStatus aggregates consultations per registry outcome.
func (d *Database) CountByStatus() (map[string]int64, error) {
	if d == nil {
		return nil, errors.New("database is nil")
	}
	var rows []struct {
		Status string
		Total  int64
	}
	if err := d.gorm.Model(&Consultation{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
