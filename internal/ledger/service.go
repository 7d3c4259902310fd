package ledger

import (
	"errors"
	"time"

	"lapak-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSupplierNotFound    = errors.New("supplier tidak ditemukan")
	ErrPaymentMethodNotSet = errors.New("metode pembayaran supplier belum diatur")
	ErrInsufficientBalance = errors.New("jumlah pembayaran melebihi saldo tagihan")
	ErrInvalidAmount       = errors.New("jumlah pembayaran harus lebih dari nol")
)

// Toleransi pembulatan floating point untuk pengecekan saldo
const balanceTolerance = 0.01

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordPayment mendebit saldo supplier dan mencatat pembayaran append-only
// dalam satu transaksi. Metode kosong jatuh ke metode pembayaran yang
// dikonfigurasi di profil supplier.
// Saldo tidak boleh jadi negatif: debit yang melebihi saldo ditolak utuh
// dan tidak meninggalkan jejak apa pun.
func (s *Service) RecordPayment(supplierID uint, amount float64, metode models.PaymentMethod, tanggal time.Time) (*models.SupplierPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var payment models.SupplierPayment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var supplier models.Supplier
		if err := tx.First(&supplier, supplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSupplierNotFound
			}
			return err
		}

		if metode == "" {
			metode = supplier.MetodePembayaran
		}
		if metode == "" {
			return ErrPaymentMethodNotSet
		}

		// Debit kondisional atomik: hanya kena kalau saldo cukup, jadi dua
		// pembayaran paralel tidak bisa sama-sama lolos dari saldo yang sama.
		res := tx.Model(&models.SupplierBalance{}).
			Where("supplier_id = ? AND balance >= ?", supplierID, amount-balanceTolerance).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		payment = models.SupplierPayment{
			SupplierID: supplierID,
			Tanggal:    dateOnly(tanggal),
			Jumlah:     amount,
			Metode:     metode,
			Reference:  uuid.NewString(),
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

type BalanceEntry struct {
	SupplierID       uint                 `json:"supplier_id"`
	NamaSupplier     string               `json:"nama_supplier"`
	NomorRegister    string               `json:"nomor_register"`
	MetodePembayaran models.PaymentMethod `json:"metode_pembayaran"`
	NomorRekening    string               `json:"nomor_rekening"`
	Balance          float64              `json:"total_tagihan"`
}

// Balances mengembalikan saldo tagihan berjalan semua supplier.
// Supplier tanpa baris saldo dilaporkan 0.
func (s *Service) Balances() ([]BalanceEntry, error) {
	var suppliers []models.Supplier
	if err := s.db.Order("nama_supplier").Find(&suppliers).Error; err != nil {
		return nil, err
	}

	var balances []models.SupplierBalance
	if err := s.db.Find(&balances).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]float64, len(balances))
	for _, b := range balances {
		byID[b.SupplierID] = b.Balance
	}

	entries := make([]BalanceEntry, 0, len(suppliers))
	for _, sup := range suppliers {
		entries = append(entries, BalanceEntry{
			SupplierID:       sup.ID,
			NamaSupplier:     sup.NamaSupplier,
			NomorRegister:    sup.NomorRegister,
			MetodePembayaran: sup.MetodePembayaran,
			NomorRekening:    sup.NomorRekening,
			Balance:          byID[sup.ID],
		})
	}
	return entries, nil
}

type HistoryFilter struct {
	SupplierID uint
	Metode     models.PaymentMethod
	From       *time.Time
	To         *time.Time
	Limit      int
}

// History mengembalikan catatan pembayaran, terbaru dulu.
func (s *Service) History(filter HistoryFilter) ([]models.SupplierPayment, error) {
	q := s.db.Model(&models.SupplierPayment{}).Preload("Supplier")

	if filter.SupplierID != 0 {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Metode != "" {
		q = q.Where("metode = ?", filter.Metode)
	}
	if filter.From != nil {
		q = q.Where("tanggal >= ?", dateOnly(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("tanggal <= ?", dateOnly(*filter.To))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var payments []models.SupplierPayment
	if err := q.Order("tanggal desc, id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

type SupplierSummary struct {
	SupplierID        uint                 `json:"supplier_id"`
	NamaSupplier      string               `json:"nama_supplier"`
	NomorRegister     string               `json:"nomor_register"`
	MetodePembayaran  models.PaymentMethod `json:"metode_pembayaran"`
	NomorRekening     string               `json:"nomor_rekening"`
	TotalTagihan      float64              `json:"total_tagihan"`
	PenjualanBulanIni float64              `json:"penjualan_bulan_ini"`
}

// Summary mengembalikan saldo tagihan plus total penjualan produk supplier
// bulan berjalan. Hanya laporan terkonfirmasi yang dihitung, laporan
// pending belum jadi tagihan.
func (s *Service) Summary(supplierID uint, now time.Time) (*SupplierSummary, error) {
	var supplier models.Supplier
	if err := s.db.First(&supplier, supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}

	var balance models.SupplierBalance
	err := s.db.Where("supplier_id = ?", supplierID).First(&balance).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var penjualan float64
	err = s.db.Model(&models.ReportItem{}).
		Select("COALESCE(SUM(report_items.total_harga_beli), 0)").
		Joins("JOIN daily_reports ON daily_reports.id = report_items.laporan_id").
		Joins("JOIN products ON products.id = report_items.product_id").
		Where("products.supplier_id = ?", supplierID).
		Where("daily_reports.status = ?", models.ReportConfirmed).
		Where("daily_reports.tanggal >= ? AND daily_reports.tanggal < ?", monthStart, nextMonth).
		Scan(&penjualan).Error
	if err != nil {
		return nil, err
	}

	return &SupplierSummary{
		SupplierID:        supplier.ID,
		NamaSupplier:      supplier.NamaSupplier,
		NomorRegister:     supplier.NomorRegister,
		MetodePembayaran:  supplier.MetodePembayaran,
		NomorRekening:     supplier.NomorRekening,
		TotalTagihan:      balance.Balance,
		PenjualanBulanIni: penjualan,
	}, nil
}

type SupplierSaleEntry struct {
	Tanggal    string  `json:"tanggal"`
	Lokasi     string  `json:"lokasi"`
	NamaProduk string  `json:"nama_produk"`
	Terjual    int     `json:"terjual"`
	TotalBiaya float64 `json:"total_biaya"`
}

// SalesHistory mengembalikan rincian penjualan terkonfirmasi produk supplier,
// opsional dibatasi ke satu lapak.
func (s *Service) SalesHistory(supplierID uint, lapakID uint) ([]SupplierSaleEntry, error) {
	var items []models.ReportItem
	q := s.db.Model(&models.ReportItem{}).
		Preload("Product").
		Joins("JOIN daily_reports ON daily_reports.id = report_items.laporan_id").
		Joins("JOIN products ON products.id = report_items.product_id").
		Where("products.supplier_id = ?", supplierID).
		Where("daily_reports.status = ?", models.ReportConfirmed)
	if lapakID != 0 {
		q = q.Where("daily_reports.lapak_id = ?", lapakID)
	}
	if err := q.Order("daily_reports.tanggal desc").Find(&items).Error; err != nil {
		return nil, err
	}

	// Lokasi dan tanggal diambil dari laporan induk
	reportIDs := make([]uint, 0, len(items))
	seen := make(map[uint]bool)
	for _, item := range items {
		if !seen[item.LaporanID] {
			seen[item.LaporanID] = true
			reportIDs = append(reportIDs, item.LaporanID)
		}
	}

	reports := make(map[uint]models.DailyReport, len(reportIDs))
	if len(reportIDs) > 0 {
		var reps []models.DailyReport
		if err := s.db.Preload("Lapak").Where("id IN ?", reportIDs).Find(&reps).Error; err != nil {
			return nil, err
		}
		for _, r := range reps {
			reports[r.ID] = r
		}
	}

	entries := make([]SupplierSaleEntry, 0, len(items))
	for _, item := range items {
		rep := reports[item.LaporanID]
		entries = append(entries, SupplierSaleEntry{
			Tanggal:    rep.Tanggal.Format("2006-01-02"),
			Lokasi:     rep.Lapak.Lokasi,
			NamaProduk: item.Product.NamaProduk,
			Terjual:    item.JumlahTerjual,
			TotalBiaya: item.TotalHargaBeli,
		})
	}
	return entries, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
