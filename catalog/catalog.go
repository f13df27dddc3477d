package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gradebot/models"

	"github.com/sirupsen/logrus"
)

// Catalog maps a lower-cased assignment identifier to its grading materials.
// It is never modified after construction and can be shared freely.
type Catalog struct {
	records map[string]models.AssignmentRecord
}

// New builds a catalog from records, lower-casing every key.
func New(records map[string]models.AssignmentRecord) *Catalog {
	m := make(map[string]models.AssignmentRecord, len(records))
	for k, v := range records {
		m[strings.ToLower(k)] = v
	}
	return &Catalog{records: m}
}

// Load reads a compiled assignment map (JSON object keyed by identifier).
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var records map[string]models.AssignmentRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(records), nil
}

// LoadOrEmpty is Load for process startup: when the map cannot be loaded the
// error is logged and an empty catalog is returned, so every lookup misses
// instead of the service failing to start.
func LoadOrEmpty(path string, log logrus.FieldLogger) *Catalog {
	c, err := Load(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("catalog: loading grading rules failed, serving with an empty catalog")
		return New(nil)
	}
	log.WithFields(logrus.Fields{"path": path, "assignments": c.Len()}).Info("catalog: loaded")
	return c
}

// Lookup matches id case-insensitively and exactly: no trimming, no prefixes.
func (c *Catalog) Lookup(id string) (models.AssignmentRecord, bool) {
	rec, ok := c.records[strings.ToLower(id)]
	return rec, ok
}

func (c *Catalog) Len() int {
	return len(c.records)
}

// Identifiers returns the known identifiers in ascending order.
func (c *Catalog) Identifiers() []string {
	out := make([]string, 0, len(c.records))
	for k := range c.records {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
