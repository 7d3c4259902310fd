package models

import "time"

// Admin - akun pengelola: owner atau penanggung jawab/anggota lapak
type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	NamaLengkap  string `gorm:"size:100;not null"`
	NIK          string `gorm:"size:20;uniqueIndex;not null"`
	Username     string `gorm:"size:80;uniqueIndex;not null"`
	Email        string `gorm:"size:120;uniqueIndex;not null"`
	NomorKontak  string `gorm:"size:20"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
