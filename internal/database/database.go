package database

import (
	"github.com/viksitkanpur/portal/internal/config"
	"github.com/viksitkanpur/portal/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Problem{},
	)
	if err != nil {
		return err
	}

	// Password accounts are unique per email; OAuth accounts per (provider, provider_id)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_password_email ON users(email) WHERE provider = 'password'")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_provider_id ON users(provider, provider_id) WHERE provider <> 'password'")

	// Staff dashboards filter on these constantly
	db.Exec("CREATE INDEX IF NOT EXISTS idx_problems_status_created_at ON problems(status, created_at DESC)")

	return nil
}
