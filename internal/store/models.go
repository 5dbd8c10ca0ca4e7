package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Consultation is an audit snapshot of one completed trademark check.
type Consultation struct {
	ID                  string `gorm:"primaryKey;size:36"`
	Brand               string `gorm:"size:256;index"`
	Description         string `gorm:"type:text"`
	Viability           int
	Status              string `gorm:"size:32;index"`
	Note                string `gorm:"type:text"`
	ClassesJSON         string `gorm:"type:text"`
	RecommendationsJSON string `gorm:"type:text"`
	AIEnabled           bool
	ProcessingTimeMs    int64
	CreatedAt           time.Time `gorm:"autoCreateTime;index"`
}

// SetClasses persists the class list as JSON.
func (c *Consultation) SetClasses(classes []string) {
	c.ClassesJSON = encodeList(classes)
}

// Classes returns the decoded class labels.
func (c *Consultation) Classes() []string {
	return decodeList(c.ClassesJSON)
}

// SetRecommendations persists the recommendation list as JSON.
func (c *Consultation) SetRecommendations(recs []string) {
	c.RecommendationsJSON = encodeList(recs)
}

// Recommendations returns the decoded recommendations.
func (c *Consultation) Recommendations() []string {
	return decodeList(c.RecommendationsJSON)
}

func encodeList(items []string) string {
	if items == nil {
		return "[]"
	}
	payload, _ := json.Marshal(items)
	return string(payload)
}

func decodeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
