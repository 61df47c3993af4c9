package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/supplydesk/supplydesk-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matches %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_catalog_tables.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_shops_user ON shops(user_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_products_name_category ON products(name, category_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_parameters_name ON parameters(name)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_product_infos_listing ON product_infos(product_id, shop_id, external_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_product_parameters_pair ON product_parameters(product_info_id, parameter_id)",
		"FOREIGN KEY (product_info_id) REFERENCES product_infos(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"DROP TABLE IF EXISTS shops",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderMigrationEnforcesSingleBasket(t *testing.T) {
	content := readMigration(t, "*_create_order_tables.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_user_basket ON orders(user_id) WHERE state = 'basket'",
		"FOREIGN KEY (product_info_id) REFERENCES product_infos(id) ON DELETE SET NULL",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
