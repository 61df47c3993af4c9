package feed

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

// Document is the supplier price-list schema. One document fully replaces the
// shop's published listings.
type Document struct {
	Shop       string          `yaml:"shop"`
	Categories []CategoryEntry `yaml:"categories"`
	Goods      []GoodEntry     `yaml:"goods"`
}

// CategoryEntry declares a category under the supplier's own id space.
type CategoryEntry struct {
	ID   uint   `yaml:"id"`
	Name string `yaml:"name"`
}

// GoodEntry is one listing: product identity plus price/stock and free-form
// attributes. Parameter values may be scalars of any YAML type.
type GoodEntry struct {
	ID         uint           `yaml:"id"`
	Category   uint           `yaml:"category"`
	Model      string         `yaml:"model"`
	Name       string         `yaml:"name"`
	Price      int            `yaml:"price"`
	PriceRRC   int            `yaml:"price_rrc"`
	Quantity   int            `yaml:"quantity"`
	Parameters map[string]any `yaml:"parameters"`
}

// ParseDocument decodes and validates a price-list document, rejecting
// unknown fields so schema drift fails loudly.
func ParseDocument(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeParse, err, "decoding price list")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the decoded document against the schema invariants. The
// whole document is rejected on the first violation.
func (d *Document) Validate() error {
	if d.Shop == "" {
		return pkgerrors.New(pkgerrors.CodeParse, "price list missing shop name")
	}
	if len(d.Goods) > 0 && len(d.Categories) == 0 {
		return pkgerrors.New(pkgerrors.CodeParse, "price list declares goods without categories")
	}

	declared := make(map[uint]struct{}, len(d.Categories))
	for i, category := range d.Categories {
		if category.ID == 0 {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("category %d missing id", i))
		}
		if category.Name == "" {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("category %d missing name", category.ID))
		}
		if _, ok := declared[category.ID]; ok {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("category %d declared twice", category.ID))
		}
		declared[category.ID] = struct{}{}
	}

	for i, good := range d.Goods {
		if good.ID == 0 {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("good %d missing id", i))
		}
		if good.Name == "" {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("good %d missing name", good.ID))
		}
		if _, ok := declared[good.Category]; !ok {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("good %d references undeclared category %d", good.ID, good.Category))
		}
		if good.Price < 0 || good.PriceRRC < 0 {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("good %d has negative price", good.ID))
		}
		if good.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeParse, fmt.Sprintf("good %d has negative quantity", good.ID))
		}
	}

	return nil
}
