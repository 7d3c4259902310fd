package report

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"lapak-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrLapakNotFound     = errors.New("lapak tidak ditemukan")
	ErrReportNotFound    = errors.New("laporan tidak ditemukan")
	ErrDuplicateReport   = errors.New("laporan untuk lapak dan tanggal ini sudah ada")
	ErrAlreadyConfirmed  = errors.New("laporan ini sudah dikonfirmasi")
	ErrBreakdownMismatch = errors.New("rincian pembayaran manual tidak sama dengan totalnya")
	ErrDuplicateLine     = errors.New("produk yang sama muncul lebih dari sekali")
)

// Toleransi pembulatan floating point untuk rekap pembayaran
const breakdownTolerance = 0.01

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LineInput - satu baris input produk dari form catatan harian.
// ProductID 0 berarti produk baru: dibuat on-the-fly dengan harga default
// dan ditandai is_manual, dialokasikan ke lapak pengirim.
type LineInput struct {
	ProductID  uint
	NamaProduk string
	SupplierID *uint
	StokAwal   int
	StokAkhir  int
}

// ManualBreakdown - rekap pembayaran yang diketik operator.
// Disimpan apa adanya, tidak pernah diturunkan dari rincian produk.
type ManualBreakdown struct {
	Cash  *float64
	Qris  *float64
	Bca   *float64
	Total *float64
}

func (m ManualBreakdown) parts() (cash, qris, bca float64) {
	if m.Cash != nil {
		cash = *m.Cash
	}
	if m.Qris != nil {
		qris = *m.Qris
	}
	if m.Bca != nil {
		bca = *m.Bca
	}
	return cash, qris, bca
}

// SubmitDailyReport membuat laporan harian berstatus pending beserta
// rincian produk dan snapshot stok penutupan, dalam satu transaksi.
// Gagal apa pun alasannya: tidak ada laporan, rincian, atau stok yang tersimpan.
func (s *Service) SubmitDailyReport(lapakID uint, tanggal time.Time, lines []LineInput, manual ManualBreakdown) (*models.DailyReport, error) {
	tanggal = dateOnly(tanggal)

	cash, qris, bca := manual.parts()
	if manual.Total != nil && math.Abs((cash+qris+bca)-*manual.Total) > breakdownTolerance {
		return nil, ErrBreakdownMismatch
	}

	// Produk ganda dalam satu laporan akan menabrak unique index stok harian
	// di tengah transaksi; ditolak di muka supaya jadi error input biasa.
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if line.ProductID == 0 {
			continue
		}
		if seen[line.ProductID] {
			return nil, ErrDuplicateLine
		}
		seen[line.ProductID] = true
	}

	var rep models.DailyReport

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lapak models.Lapak
		if err := tx.First(&lapak, lapakID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLapakNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.DailyReport{}).
			Where("lapak_id = ? AND tanggal = ?", lapakID, tanggal).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReport
		}

		rep = models.DailyReport{
			LapakID:               lapakID,
			Tanggal:               tanggal,
			Status:                models.ReportPending,
			PendapatanCash:        cash,
			PendapatanQris:        qris,
			PendapatanBca:         bca,
			ManualPendapatanCash:  manual.Cash,
			ManualPendapatanQris:  manual.Qris,
			ManualPendapatanBca:   manual.Bca,
			ManualTotalPendapatan: manual.Total,
		}
		if err := tx.Create(&rep).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReport
			}
			return err
		}

		var (
			totalPendapatan float64
			totalBiaya      float64
			totalTerjual    int
		)

		for _, line := range lines {
			// Baris kosong tidak perlu jadi rincian
			if line.StokAwal == 0 && line.StokAkhir == 0 {
				continue
			}

			var product models.Product
			if line.ProductID == 0 {
				if line.NamaProduk == "" {
					continue
				}
				product = models.Product{
					NamaProduk: line.NamaProduk,
					SupplierID: line.SupplierID,
					HargaBeli:  models.DefaultHargaBeli,
					HargaJual:  models.DefaultHargaJual,
					IsManual:   true,
					Lapaks:     []models.Lapak{lapak},
				}
				if err := tx.Create(&product).Error; err != nil {
					return fmt.Errorf("produk manual gagal dibuat: %w", err)
				}
			} else {
				if err := tx.First(&product, line.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return err
				}
			}

			// Selisih negatif dari salah input tidak boleh jadi penjualan negatif
			jumlahTerjual := line.StokAwal - line.StokAkhir
			if jumlahTerjual < 0 {
				jumlahTerjual = 0
			}

			item := models.ReportItem{
				LaporanID:      rep.ID,
				ProductID:      product.ID,
				StokAwal:       line.StokAwal,
				StokAkhir:      line.StokAkhir,
				JumlahTerjual:  jumlahTerjual,
				HargaJual:      product.HargaJual,
				HargaBeli:      product.HargaBeli,
				TotalHargaJual: float64(jumlahTerjual) * product.HargaJual,
				TotalHargaBeli: float64(jumlahTerjual) * product.HargaBeli,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			snapshot := models.DailyStock{
				LapakID:    lapakID,
				ProductID:  product.ID,
				Tanggal:    tanggal,
				JumlahSisa: line.StokAkhir,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return fmt.Errorf("stok harian gagal disimpan: %w", err)
			}

			totalPendapatan += item.TotalHargaJual
			totalBiaya += item.TotalHargaBeli
			totalTerjual += jumlahTerjual
		}

		return tx.Model(&rep).Updates(map[string]interface{}{
			"total_pendapatan":     totalPendapatan,
			"total_biaya_supplier": totalBiaya,
			"total_produk_terjual": totalTerjual,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Items").First(&rep, rep.ID).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

// ConfirmReport mengubah status pending -> confirmed dan mengkredit saldo
// tiap supplier sebesar total harga beli produknya dalam laporan ini.
// Flip status dan kredit saldo commit sebagai satu transaksi.
// Konfirmasi ulang ditolak, tidak di-no-op, supaya saldo tidak terkredit dobel.
func (s *Service) ConfirmReport(reportID uint) (*models.DailyReport, error) {
	var rep models.DailyReport

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("Items.Product").First(&rep, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}

		// Flip status dengan guard di WHERE, bukan cek-lalu-update terpisah:
		// dua konfirmasi paralel di laporan sama hanya satu yang kena baris,
		// yang lain berhenti di sini sebelum sempat mengkredit saldo.
		res := tx.Model(&models.DailyReport{}).
			Where("id = ? AND status = ?", reportID, models.ReportPending).
			Update("status", models.ReportConfirmed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyConfirmed
		}

		costs := make(map[uint]float64)
		for _, item := range rep.Items {
			if item.Product.SupplierID == nil {
				continue // produk manual, tidak ada tagihan supplier
			}
			costs[*item.Product.SupplierID] += item.TotalHargaBeli
		}

		// Urutan kredit dibuat deterministik supaya dua konfirmasi yang
		// menyentuh supplier sama tidak saling deadlock.
		supplierIDs := make([]uint, 0, len(costs))
		for sid := range costs {
			supplierIDs = append(supplierIDs, sid)
		}
		sort.Slice(supplierIDs, func(i, j int) bool { return supplierIDs[i] < supplierIDs[j] })

		for _, sid := range supplierIDs {
			cost := costs[sid]
			if cost <= 0 {
				continue
			}
			if err := creditBalance(tx, sid, cost); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep.Status = models.ReportConfirmed
	return &rep, nil
}

// creditBalance menambah saldo supplier secara atomik di level storage
// (UPDATE ... SET balance = balance + ?), bukan read-modify-write di memori,
// supaya konfirmasi paralel tidak saling menimpa.
func creditBalance(tx *gorm.DB, supplierID uint, amount float64) error {
	res := tx.Model(&models.SupplierBalance{}).
		Where("supplier_id = ?", supplierID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&models.SupplierBalance{SupplierID: supplierID, Balance: amount}).Error
	}
	return nil
}

// HasReportForDate melaporkan apakah lapak sudah punya laporan di tanggal itu.
func (s *Service) HasReportForDate(lapakID uint, tanggal time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.DailyReport{}).
		Where("lapak_id = ? AND tanggal = ?", lapakID, dateOnly(tanggal)).
		Count(&count).Error
	return count > 0, err
}

type CatalogProduct struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	HargaJual float64 `json:"harga_jual"`
	HargaBeli float64 `json:"harga_beli"`
}

type CatalogSupplier struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	Products []CatalogProduct `json:"products"`
}

// GetCatalog mengembalikan semua supplier beserta produk dan harga berlakunya
// untuk mengisi form catatan harian.
func (s *Service) GetCatalog(lapakID uint) ([]CatalogSupplier, error) {
	var count int64
	if err := s.db.Model(&models.Lapak{}).Where("id = ?", lapakID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrLapakNotFound
	}

	var suppliers []models.Supplier
	if err := s.db.Preload("Products").Order("nama_supplier").Find(&suppliers).Error; err != nil {
		return nil, err
	}

	catalog := make([]CatalogSupplier, 0, len(suppliers))
	for _, sup := range suppliers {
		entry := CatalogSupplier{
			ID:       sup.ID,
			Name:     sup.NamaSupplier,
			Products: make([]CatalogProduct, 0, len(sup.Products)),
		}
		for _, p := range sup.Products {
			entry.Products = append(entry.Products, CatalogProduct{
				ID:        p.ID,
				Name:      p.NamaProduk,
				HargaJual: p.HargaJual,
				HargaBeli: p.HargaBeli,
			})
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}

// GetOpeningStock mengambil stok awal untuk suatu hari: sisa stok snapshot
// terakhir sebelum tanggal itu, atau 0 kalau belum pernah ada snapshot.
func (s *Service) GetOpeningStock(lapakID, productID uint, tanggal time.Time) (int, error) {
	var snapshot models.DailyStock
	err := s.db.
		Where("lapak_id = ? AND product_id = ? AND tanggal < ?", lapakID, productID, dateOnly(tanggal)).
		Order("tanggal desc").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return snapshot.JumlahSisa, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
