package migrate

import (
	"context"
	"fmt"
	"strings"

	"kasap-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, pg_trgm
	CreateChecks           bool // enum and range CHECK constraints
	CreateIndexes          bool // composite and trigram indexes
	CreateFKsViaSQL        bool // gorm constraints are disabled, FKs live here
	CreateUpdatedAtTrigger bool
}

// DefaultMigrateOptions enables every PostgreSQL specific step.
// The zero value runs AutoMigrate only and works on any dialect.
func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

type step struct {
	name string
	sql  string
}

func MigrateKasapDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	db = db.WithContext(ctx)
	log.Info("starting kasap database migration")

	if opt.CreateExtensions {
		log.Info("creating PostgreSQL extensions")
		if err := run(db, log, []step{
			{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
			{"pg_trgm", `CREATE EXTENSION IF NOT EXISTS pg_trgm`},
		}); err != nil {
			return err
		}
	}

	log.Info("migrating tables")
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Error("auto migrate failed", zap.Error(err))
		return err
	}
	log.Info("tables migrated")

	if opt.CreateUpdatedAtTrigger {
		log.Info("creating updated_at triggers")
		steps := []step{{"set_updated_at function", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;`}}
		for _, table := range []string{"orders", "time_slots", "appointments", "user_profiles", "charity_organizations", "users"} {
			steps = append(steps, step{"trigger " + table, fmt.Sprintf(`
DROP TRIGGER IF EXISTS trg_%[1]s_updated ON %[1]s;
CREATE TRIGGER trg_%[1]s_updated
BEFORE UPDATE ON %[1]s
FOR EACH ROW EXECUTE FUNCTION set_updated_at();`, table)})
		}
		if err := run(db, log, steps); err != nil {
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("creating CHECK constraints")
		if err := run(db, log, []step{
			check("orders", "chk_orders_status_allowed", "status IN "+inList(orderStatuses())),
			check("orders", "chk_orders_service_type_allowed", "service_type IN ('kurban','adak','sukur')"),
			check("orders", "chk_orders_delivery_type_allowed", "delivery_type IN ('personal','charity','restaurant','africa')"),
			check("orders", "chk_orders_payment_status_allowed", "payment_status IN ('pending','completed','failed','refunded')"),
			check("orders", "chk_orders_payment_method_allowed", "payment_method IS NULL OR payment_method IN ('paypal','iban','local')"),
			check("orders", "chk_orders_total_amount_positive", "total_amount > 0"),
			check("orders", "chk_orders_currency_code_len", "char_length(currency) = 3"),
			check("orders", "chk_orders_charity_org", "delivery_type <> 'charity' OR charity_organization_id IS NOT NULL"),
			check("time_slots", "chk_time_slots_capacity", "max_capacity > 0 AND current_bookings >= 0 AND current_bookings <= max_capacity"),
			check("time_slots", "chk_time_slots_window", "start_time < end_time"),
			check("appointments", "chk_appointments_status_allowed", "status IN "+inList(appointmentStatuses())),
			check("user_profiles", "chk_user_profiles_language", "language IN ('tr','en','ar')"),
			check("users", "chk_users_role", "role IN ('customer','butcher','admin')"),
			check("reviews", "chk_reviews_rating", "rating BETWEEN 1 AND 5"),
		}); err != nil {
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("creating indexes")
		if err := run(db, log, []step{
			{"ix_orders_user_created", `CREATE INDEX IF NOT EXISTS ix_orders_user_created ON orders (user_id, created_at DESC)`},
			{"ix_orders_status_created", `CREATE INDEX IF NOT EXISTS ix_orders_status_created ON orders (status, created_at DESC)`},
			{"ix_orders_notes_trgm", `CREATE INDEX IF NOT EXISTS ix_orders_notes_trgm ON orders USING gin (special_notes gin_trgm_ops)`},
			{"ix_user_profiles_name_trgm", `CREATE INDEX IF NOT EXISTS ix_user_profiles_name_trgm ON user_profiles USING gin ((first_name || ' ' || last_name) gin_trgm_ops)`},
			{"ix_appointments_user_status", `CREATE INDEX IF NOT EXISTS ix_appointments_user_status ON appointments (user_id, status)`},
		}); err != nil {
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("creating foreign keys")
		if err := run(db, log, []step{
			fk("user_profiles", "fk_user_profiles_user", "user_id", "users(id)", "CASCADE"),
			fk("user_sessions", "fk_user_sessions_user", "user_id", "users(id)", "CASCADE"),
			fk("password_reset_tokens", "fk_password_reset_tokens_user", "user_id", "users(id)", "CASCADE"),
			fk("orders", "fk_orders_charity", "charity_organization_id", "charity_organizations(id)", "RESTRICT"),
			fk("media_files", "fk_media_files_order", "order_id", "orders(id)", "CASCADE"),
			fk("reviews", "fk_reviews_order", "order_id", "orders(id)", "CASCADE"),
			fk("appointments", "fk_appointments_slot", "time_slot_id", "time_slots(id)", "RESTRICT"),
			fk("appointments", "fk_appointments_order", "order_id", "orders(id)", "SET NULL"),
		}); err != nil {
			return err
		}
	}

	log.Info("kasap database migration completed")
	return nil
}

func run(db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("migration step failed", zap.String("step", s.name), zap.Error(err))
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func check(table, name, expr string) step {
	return step{name, fmt.Sprintf(`
ALTER TABLE %[1]s DROP CONSTRAINT IF EXISTS %[2]s;
ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);`, table, name, expr)}
}

func fk(table, name, column, ref, onDelete string) step {
	return step{name, fmt.Sprintf(`
ALTER TABLE %[1]s
  DROP CONSTRAINT IF EXISTS %[2]s,
  ADD CONSTRAINT %[2]s FOREIGN KEY (%[3]s) REFERENCES %[4]s ON DELETE %[5]s;`, table, name, column, ref, onDelete)}
}

func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "(" + strings.Join(quoted, ",") + ")"
}

func orderStatuses() []string {
	out := make([]string, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		out[i] = string(s)
	}
	return out
}

func appointmentStatuses() []string {
	out := make([]string, len(models.AppointmentStatuses))
	for i, s := range models.AppointmentStatuses {
		out[i] = string(s)
	}
	return out
}
