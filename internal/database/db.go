package database

import (
	"fmt"

	"lapak-backend/internal/config"
	"lapak-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open membuka koneksi Postgres dan menjalankan migrasi skema.
// Handle dikembalikan ke pemanggil, tidak disimpan sebagai global.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("koneksi database gagal: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("koneksi database siap, migrasi selesai")
	return db, nil
}

// Migrate dipisah supaya test bisa memakai driver lain.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Supplier{},
		&models.SupplierBalance{},
		&models.SupplierPayment{},
		&models.Lapak{},
		&models.Product{},
		&models.DailyReport{},
		&models.ReportItem{},
		&models.DailyStock{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrasi gagal: %w", err)
	}
	return nil
}
