package models

import "time"

// Lapak - titik jualan konsinyasi
type Lapak struct {
	ID              uint   `gorm:"primaryKey"`
	Lokasi          string `gorm:"size:200;uniqueIndex;not null"`
	UserID          uint   `gorm:"index;not null"` // penanggung jawab
	PenanggungJawab Admin  `gorm:"foreignKey:UserID"`
	Anggota         []Admin   `gorm:"many2many:lapak_anggota"`
	Products        []Product `gorm:"many2many:product_lapak"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
