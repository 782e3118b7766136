package main

import (
	"log"

	"gen8n-be/internal/config"
	"gen8n-be/internal/model"
	"gen8n-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Debug)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Starting GORM migration...")

	color.Cyan("Step 1: Extensions")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Yellow("Warn: pgcrypto: %v. Continuing...", err)
	}

	color.Cyan("Step 2: AutoMigrate")
	models := []interface{}{
		&model.User{},
		&model.UserProvider{},
		&model.Settings{},
		&model.Profile{},
		&model.Workflow{},
		&model.CreditTransaction{},
		&model.Feedback{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		log.Fatal(err)
	}

	// Guarded so reruns do not fail on existing constraints.
	color.Cyan("Step 3: Constraints")
	constraints := []struct{ table, name, check string }{
		{"users", "chk_users_plan", `plan IN ('free', 'starter', 'pro', 'power')`},
		{"users", "chk_users_credits", `credits >= 0 AND reserved_credits >= 0 AND reserved_credits <= credits`},
		{"users", "chk_users_usage", `usage_count >= 0`},
		{"workflows", "chk_workflows_status", `status IN ('pending', 'ready', 'complete', 'error')`},
		{"credit_transactions", "chk_credit_transactions_type", `type IN ('purchase', 'usage', 'refund', 'bonus')`},
		{"feedback", "chk_feedback_type", `type IN ('bug', 'feature', 'comment')`},
		{"settings", "chk_settings_main_provider", `main_provider IS NULL OR main_provider IN ('anthropic', 'openai', 'openrouter', 'google')`},
		{"settings", "chk_settings_fallback_provider", `fallback_provider IS NULL OR fallback_provider IN ('anthropic', 'openai', 'openrouter', 'google')`},
	}
	for _, c := range constraints {
		sql := `DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + c.name + `') THEN
				ALTER TABLE ` + c.table + ` ADD CONSTRAINT ` + c.name + ` CHECK (` + c.check + `);
			END IF;
		END $$;`
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: constraint %s: %v", c.name, err)
			continue
		}
		color.Green("  ✓ %s", c.name)
	}

	color.Cyan("Step 4: Triggers")
	postMigrationSQL := []string{
		`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
		BEGIN
		  NEW.updated_at = now();
		  RETURN NEW;
		END; $$;`,
		`DROP TRIGGER IF EXISTS set_workflows_updated_at ON workflows;`,
		`CREATE TRIGGER set_workflows_updated_at BEFORE UPDATE ON workflows
		 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: post-migration SQL failed: %v", err)
		}
	}

	color.Green("✅ Success: Database migration completed.")
}
