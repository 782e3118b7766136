package main

import (
	"log"
	"os"

	"gen8n-be/internal/config"
	"gen8n-be/internal/model"
	"gen8n-be/pkg/credit"
	"gen8n-be/pkg/database"

	"github.com/fatih/color"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	demoEmail    = "demo@gen8n.local"
	demoPassword = "demo-password"
)

// Seeds a demo account that has finished onboarding on the credit path, so
// the dashboard and the generator can be exercised locally.
func main() {
	cfg := config.Load()
	if cfg.App.IsProduction() {
		log.Fatal("Error: refusing to seed a production database")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Debug)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	password := demoPassword
	if v := os.Getenv("SEED_DEMO_PASSWORD"); v != "" {
		password = v
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return seedDemoUser(tx, password)
	})
	if err != nil {
		color.Red("Seeding failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ Demo account ready: %s", demoEmail)
}

func seedDemoUser(tx *gorm.DB, password string) error {
	var existing model.User
	if err := tx.Where("email = ?", demoEmail).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if existing.Email != "" {
		color.Yellow("Demo user %s already exists, skipping", demoEmail)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashed := string(hash)

	user := model.User{
		Email:        demoEmail,
		PasswordHash: &hashed,
		FirstName:    "Demo",
		LastName:     "User",
		Plan:         "free",
		Credits:      credit.WelcomeBonus,
	}
	if err := tx.Create(&user).Error; err != nil {
		return err
	}
	color.Cyan("  ✓ user %s", user.Id)

	mainProvider, fallbackProvider := string(credit.ProviderAnthropic), string(credit.ProviderOpenAI)
	settings := model.Settings{
		UserId:             user.Id,
		MainProvider:       &mainProvider,
		FallbackProvider:   &fallbackProvider,
		OnboardingComplete: true,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return err
	}
	if err := tx.Create(&model.Profile{UserId: user.Id, CompanyOrProject: "Demo", UsageIntent: "personal"}).Error; err != nil {
		return err
	}

	bonus := model.CreditTransaction{
		UserId:      user.Id,
		Type:        "bonus",
		Amount:      credit.WelcomeBonus,
		Description: "Welcome bonus",
	}
	if err := tx.Create(&bonus).Error; err != nil {
		return err
	}
	color.Cyan("  ✓ %d welcome credits", credit.WelcomeBonus)

	sample := model.Workflow{
		UserId:      user.Id,
		Name:        "Daily digest",
		Description: "Send a summary email every morning",
		Json:        datatypes.JSON(`{"nodes":[],"connections":{}}`),
		StickyNotes: datatypes.JSON(`{}`),
		Status:      "complete",
	}
	if err := tx.Create(&sample).Error; err != nil {
		return err
	}
	color.Cyan("  ✓ sample workflow %s", sample.Id)
	return nil
}
