package models

import "time"

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentQris     PaymentMethod = "qris"
	PaymentTransfer PaymentMethod = "transfer"
)

type Supplier struct {
	ID               uint   `gorm:"primaryKey"`
	NamaSupplier     string `gorm:"size:100;not null"`
	Username         string `gorm:"size:80;uniqueIndex;not null"`
	Kontak           string `gorm:"size:20"`
	NomorRegister    string `gorm:"size:50;uniqueIndex"` // REG001, REG002, ...
	Alamat           string `gorm:"size:500"`
	PasswordHash     string `gorm:"size:255;not null"`
	MetodePembayaran PaymentMethod `gorm:"size:20"` // kosong = belum diatur
	NomorRekening    string        `gorm:"size:50"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Products []Product
}

// SupplierBalance - total tagihan berjalan per supplier.
// Invariant: balance tidak boleh negatif (toleransi pembulatan 0.01).
type SupplierBalance struct {
	ID         uint    `gorm:"primaryKey"`
	SupplierID uint    `gorm:"uniqueIndex;not null"`
	Balance    float64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SupplierPayment - catatan pembayaran ke supplier, append-only.
// Tidak pernah diubah atau dihapus setelah dibuat.
type SupplierPayment struct {
	ID         uint `gorm:"primaryKey"`
	SupplierID uint `gorm:"index;not null"`
	Supplier   Supplier
	Tanggal    time.Time     `gorm:"index;not null"`
	Jumlah     float64       `gorm:"not null"`
	Metode     PaymentMethod `gorm:"size:20;not null"`
	Reference  string        `gorm:"size:36;uniqueIndex"` // nomor kuitansi (uuid)
	CreatedAt  time.Time
}
