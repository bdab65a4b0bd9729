// Package scenario holds the negotiation role-play catalog. Records are
// loaded once at startup and never mutated, so the catalog is safe for
// unlimited concurrent readers.
package scenario

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var defaultCatalogYAML []byte

// Record describes one selectable negotiation scenario.
type Record struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	Story        string `yaml:"story" json:"story"`
	Purpose      string `yaml:"purpose" json:"purpose"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	FirstMessage string `yaml:"first_message" json:"first_message"`
	Goal         string `yaml:"goal" json:"goal"`
}

// Catalog is an immutable id-indexed set of scenario records.
type Catalog struct {
	byID  map[string]Record
	order []string
}

// Load builds the catalog from the embedded defaults, replaced by the
// records in overridePath when it is non-empty.
func Load(overridePath string) (*Catalog, error) {
	raw := defaultCatalogYAML
	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read scenario file %s", overridePath)
		}
		raw = data
	}

	var records []Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "malformed scenario catalog")
	}
	if len(records) == 0 {
		return nil, errors.New("scenario catalog is empty")
	}

	catalog := &Catalog{byID: make(map[string]Record, len(records))}
	for _, record := range records {
		if record.ID == "" {
			return nil, errors.New("scenario record without id")
		}
		if _, ok := catalog.byID[record.ID]; ok {
			return nil, errors.Errorf("duplicate scenario id: %s", record.ID)
		}
		catalog.byID[record.ID] = record
		catalog.order = append(catalog.order, record.ID)
	}
	return catalog, nil
}

// Get looks up a scenario by id.
func (c *Catalog) Get(id string) (Record, bool) {
	record, ok := c.byID[id]
	return record, ok
}

// List returns all records in catalog file order.
func (c *Catalog) List() []Record {
	records := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		records = append(records, c.byID[id])
	}
	return records
}
