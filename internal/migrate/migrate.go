package migrate

import (
	"context"

	"github.com/Jeng2004/t-double-project-sub000/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	CreateExtensions       bool
	CreateChecks           bool
	CreateIndexes          bool
	CreateUpdatedAtTrigger bool
}

func DefaultOptions() Options {
	return Options{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

func Run(ctx context.Context, db *gorm.DB, log *zap.Logger, opt Options) error {
	log.Info("starting database migration")

	if opt.CreateExtensions {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("failed to enable pgcrypto", zap.Error(err))
			return err
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.PendingSignup{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ReturnRequest{},
		&models.ReturnItem{},
		&models.SpecialOrder{},
		&models.WebhookEvent{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.WithContext(ctx).Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_special_orders_updated ON special_orders;
CREATE TRIGGER trg_special_orders_updated
BEFORE UPDATE ON special_orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("failed to create updated_at trigger", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		checks := []string{
			`ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('รอชำระเงิน','รอดำเนินการ','กำลังดำเนินการจัดเตรียมสินค้า','กำลังดำเนินการจัดส่งสินค้า','จัดส่งสินค้าสำเร็จเเล้ว','ยกเลิก'))`,
			`ALTER TABLE special_orders
  DROP CONSTRAINT IF EXISTS chk_special_orders_status_allowed;
ALTER TABLE special_orders
  ADD CONSTRAINT chk_special_orders_status_allowed
  CHECK (status IN ('รอชำระเงิน','รอดำเนินการ','กำลังดำเนินการจัดเตรียมสินค้า','กำลังดำเนินการจัดส่งสินค้า','จัดส่งสินค้าสำเร็จเเล้ว','ยกเลิก'))`,
			`ALTER TABLE product_variants
  DROP CONSTRAINT IF EXISTS chk_variants_stock_non_negative;
ALTER TABLE product_variants
  ADD CONSTRAINT chk_variants_stock_non_negative
  CHECK (stock >= 0)`,
			`ALTER TABLE product_variants
  DROP CONSTRAINT IF EXISTS chk_variants_size_allowed;
ALTER TABLE product_variants
  ADD CONSTRAINT chk_variants_size_allowed
  CHECK (size IN ('S','M','L','XL'))`,
			`ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0)`,
			`ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_prices_non_negative;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_prices_non_negative
  CHECK (unit_price_cents >= 0 AND line_total_cents >= 0)`,
			`ALTER TABLE return_items
  DROP CONSTRAINT IF EXISTS chk_return_items_quantity_gt_zero;
ALTER TABLE return_items
  ADD CONSTRAINT chk_return_items_quantity_gt_zero
  CHECK (quantity > 0)`,
			`ALTER TABLE return_requests
  DROP CONSTRAINT IF EXISTS chk_return_requests_one_parent;
ALTER TABLE return_requests
  ADD CONSTRAINT chk_return_requests_one_parent
  CHECK ((order_id IS NULL) <> (special_order_id IS NULL))`,
		}
		for _, stmt := range checks {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("failed to create CHECK constraint", zap.Error(err))
				return err
			}
		}
	}

	if opt.CreateIndexes {
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS ix_orders_user_created ON orders (user_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS ix_orders_status_created ON orders (status, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS ix_special_orders_user_created ON special_orders (user_id, created_at DESC)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_return_items_order_item ON return_items (order_item_id)`,
		}
		for _, stmt := range indexes {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("failed to create index", zap.Error(err))
				return err
			}
		}
	}

	log.Info("database migration finished")
	return nil
}
