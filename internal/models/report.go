package models

import "time"

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"   // menunggu konfirmasi owner
	ReportConfirmed ReportStatus = "confirmed" // terkonfirmasi, tidak boleh diubah lagi
)

// DailyReport - laporan harian satu lapak. Maksimal satu per (lapak, tanggal).
// Setelah terkonfirmasi, total-totalnya tidak pernah dimutasi lagi.
type DailyReport struct {
	ID      uint      `gorm:"primaryKey"`
	LapakID uint      `gorm:"not null;uniqueIndex:idx_laporan_lapak_tanggal"`
	Lapak   Lapak
	Tanggal time.Time    `gorm:"not null;uniqueIndex:idx_laporan_lapak_tanggal"`
	Status  ReportStatus `gorm:"size:20;not null;default:pending"`

	// Rekap otomatis: dihitung dari rincian produk x snapshot harga
	TotalPendapatan    float64 `gorm:"not null;default:0"`
	TotalBiayaSupplier float64 `gorm:"not null;default:0"`
	TotalProdukTerjual int     `gorm:"not null;default:0"`
	PendapatanCash     float64 `gorm:"not null;default:0"`
	PendapatanQris     float64 `gorm:"not null;default:0"`
	PendapatanBca      float64 `gorm:"not null;default:0"`

	// Rekap manual: angka yang diketik operator, disimpan apa adanya.
	// Boleh berbeda dari rekap otomatis dan tidak pernah digabung.
	ManualPendapatanCash  *float64
	ManualPendapatanQris  *float64
	ManualPendapatanBca   *float64
	ManualTotalPendapatan *float64

	Items []ReportItem `gorm:"foreignKey:LaporanID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReportItem - rincian penjualan satu produk dalam satu laporan.
// HargaJual/HargaBeli adalah snapshot harga saat laporan dibuat.
type ReportItem struct {
	ID        uint `gorm:"primaryKey"`
	LaporanID uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product

	StokAwal      int `gorm:"not null"`
	StokAkhir     int `gorm:"not null"`
	JumlahTerjual int `gorm:"not null"` // max(0, stok_awal - stok_akhir)

	HargaJual      float64 `gorm:"not null"`
	HargaBeli      float64 `gorm:"not null"`
	TotalHargaJual float64 `gorm:"not null"`
	TotalHargaBeli float64 `gorm:"not null"`

	CreatedAt time.Time
}
