package models

import "time"

// DailyStock (StokHarian) - sisa stok penutupan per (lapak, produk, tanggal).
// Dipakai sebagai stok awal keesokan harinya.
type DailyStock struct {
	ID         uint `gorm:"primaryKey"`
	LapakID    uint `gorm:"not null;uniqueIndex:idx_stok_lapak_produk_tanggal"`
	ProductID  uint `gorm:"not null;uniqueIndex:idx_stok_lapak_produk_tanggal"`
	Tanggal    time.Time `gorm:"not null;uniqueIndex:idx_stok_lapak_produk_tanggal"`
	JumlahSisa int       `gorm:"not null"`
	CreatedAt  time.Time
}
