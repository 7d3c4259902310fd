package models

import "time"

// Harga default untuk produk yang dibuat on-the-fly saat input laporan
const (
	DefaultHargaBeli = 8000.0
	DefaultHargaJual = 10000.0
)

// Product - produk titipan supplier. SupplierID nil untuk produk manual.
// Harga boleh diubah admin; rincian laporan menyimpan snapshot harga
// saat penjualan sehingga tidak terpengaruh perubahan belakangan.
type Product struct {
	ID         uint      `gorm:"primaryKey"`
	NamaProduk string    `gorm:"size:100;not null"`
	SupplierID *uint     `gorm:"index"`
	Supplier   *Supplier `gorm:"constraint:OnDelete:SET NULL"`
	HargaBeli  float64   `gorm:"not null;default:8000"`
	HargaJual  float64   `gorm:"not null;default:10000"`
	IsManual   bool      `gorm:"not null;default:false"`
	Lapaks     []Lapak   `gorm:"many2many:product_lapak"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
