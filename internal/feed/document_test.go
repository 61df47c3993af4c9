package feed

import (
	"strings"
	"testing"

	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

const sampleDoc = `
shop: Connect
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Smartphone Apple iPhone XS Max 512GB (gold)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Screen Size (inches)": 6.5
      "Resolution (pix)": 2688x1242
      "Internal Memory (GB)": 512
      "Color": gold
`

func TestParseDocument(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Shop != "Connect" {
		t.Fatalf("unexpected shop %q", doc.Shop)
	}
	if len(doc.Categories) != 2 || doc.Categories[0].ID != 224 {
		t.Fatalf("unexpected categories: %+v", doc.Categories)
	}
	if len(doc.Goods) != 1 {
		t.Fatalf("expected 1 good, got %d", len(doc.Goods))
	}
	good := doc.Goods[0]
	if good.ID != 4216292 || good.Category != 224 || good.PriceRRC != 116990 {
		t.Fatalf("unexpected good: %+v", good)
	}
	if len(good.Parameters) != 4 {
		t.Fatalf("expected 4 parameters, got %d", len(good.Parameters))
	}
}

func TestParseDocumentRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	data := strings.Replace(sampleDoc, "shop: Connect", "shop: Connect\nwarehouse: north", 1)
	_, err := ParseDocument([]byte(data))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeParse {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestParseDocumentRejectsUndeclaredCategory(t *testing.T) {
	t.Parallel()

	data := strings.Replace(sampleDoc, "category: 224", "category: 999", 1)
	_, err := ParseDocument([]byte(data))
	if err == nil {
		t.Fatal("expected error for undeclared category")
	}
	if !strings.Contains(err.Error(), "undeclared category") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseDocumentRejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	data := strings.Replace(sampleDoc, "quantity: 14", "quantity: -1", 1)
	if _, err := ParseDocument([]byte(data)); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestParseDocumentRejectsMissingShop(t *testing.T) {
	t.Parallel()

	data := strings.Replace(sampleDoc, "shop: Connect", `shop: ""`, 1)
	if _, err := ParseDocument([]byte(data)); err == nil {
		t.Fatal("expected error for missing shop name")
	}
}

func TestValidateRejectsDuplicateCategory(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Shop: "Connect",
		Categories: []CategoryEntry{
			{ID: 1, Name: "A"},
			{ID: 1, Name: "B"},
		},
	}
	if err := doc.Validate(); err == nil {
		t.Fatal("expected error for duplicate category id")
	}
}
