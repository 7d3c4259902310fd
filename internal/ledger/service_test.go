package ledger

import (
	"testing"
	"time"

	"lapak-backend/internal/database"
	"lapak-backend/internal/models"
	"lapak-backend/internal/report"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedSupplier(t *testing.T, db *gorm.DB, metode models.PaymentMethod, balance float64) models.Supplier {
	t.Helper()

	supplier := models.Supplier{
		NamaSupplier:     "Ibu Sari",
		Username:         "sari",
		PasswordHash:     "x",
		MetodePembayaran: metode,
	}
	require.NoError(t, db.Create(&supplier).Error)
	require.NoError(t, db.Create(&models.SupplierBalance{SupplierID: supplier.ID, Balance: balance}).Error)
	return supplier
}

func currentBalance(t *testing.T, db *gorm.DB, supplierID uint) float64 {
	t.Helper()

	var balance models.SupplierBalance
	require.NoError(t, db.Where("supplier_id = ?", supplierID).First(&balance).Error)
	return balance.Balance
}

func TestRecordPaymentDebitsBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 160000)

	payment, err := svc.RecordPayment(supplier.ID, 100000, "", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.InDelta(t, 60000, currentBalance(t, db, supplier.ID), 0.001)
	require.Equal(t, models.PaymentCash, payment.Metode) // dari profil supplier
	require.NotEmpty(t, payment.Reference)
}

func TestRecordPaymentFullBalanceReachesZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 160000)

	_, err := svc.RecordPayment(supplier.ID, 160000, "", time.Now())
	require.NoError(t, err)
	require.InDelta(t, 0, currentBalance(t, db, supplier.ID), 0.001)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 160000)

	_, err := svc.RecordPayment(supplier.ID, 200000, "", time.Now())
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Debit yang ditolak tidak meninggalkan jejak
	require.InDelta(t, 160000, currentBalance(t, db, supplier.ID), 0.001)
	var payments int64
	require.NoError(t, db.Model(&models.SupplierPayment{}).Count(&payments).Error)
	require.EqualValues(t, 0, payments)
}

func TestRecordPaymentEpsilonBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 160000)

	// Lebih dari saldo + toleransi: ditolak
	_, err := svc.RecordPayment(supplier.ID, 160000.02, "", time.Now())
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.InDelta(t, 160000, currentBalance(t, db, supplier.ID), 0.001)

	// Selisih pembulatan di bawah 0.01: lolos, saldo tidak pernah
	// turun di bawah -0.01
	_, err = svc.RecordPayment(supplier.ID, 160000.005, "", time.Now())
	require.NoError(t, err)
	require.InDelta(t, -0.005, currentBalance(t, db, supplier.ID), 0.0001)
	require.GreaterOrEqual(t, currentBalance(t, db, supplier.ID), -0.01)
}

func TestRecordPaymentMethodOverride(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 50000)

	payment, err := svc.RecordPayment(supplier.ID, 20000, models.PaymentTransfer, time.Now())
	require.NoError(t, err)
	require.Equal(t, models.PaymentTransfer, payment.Metode)
}

func TestRecordPaymentRequiresMethod(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, "", 50000)

	_, err := svc.RecordPayment(supplier.ID, 20000, "", time.Now())
	require.ErrorIs(t, err, ErrPaymentMethodNotSet)
}

func TestRecordPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 50000)

	_, err := svc.RecordPayment(supplier.ID, 0, "", time.Now())
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordPayment(supplier.ID, -100, "", time.Now())
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordPayment(supplier.ID+99, 100, "", time.Now())
	require.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestBalancesIncludesSuppliersWithoutRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	seedSupplier(t, db, models.PaymentCash, 75000)

	// Supplier kedua tanpa baris saldo
	other := models.Supplier{NamaSupplier: "Pak Joko", Username: "joko", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	entries, err := svc.Balances()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := make(map[string]float64)
	for _, e := range entries {
		byName[e.NamaSupplier] = e.Balance
	}
	require.InDelta(t, 75000, byName["Ibu Sari"], 0.001)
	require.InDelta(t, 0, byName["Pak Joko"], 0.001)
}

func TestHistoryFiltersBySupplierAndDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 500000)

	dates := []time.Time{
		time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		_, err := svc.RecordPayment(supplier.ID, 10000, "", d)
		require.NoError(t, err)
	}

	from := time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	payments, err := svc.History(HistoryFilter{SupplierID: supplier.ID, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, "2025-12-05", payments[0].Tanggal.UTC().Format("2006-01-02"))
}

func TestSummaryCountsOnlyConfirmedReports(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	reportSvc := report.NewService(db)

	pj := models.Admin{NamaLengkap: "Budi", NIK: "123", Username: "budi", Email: "budi@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&pj).Error)
	lapak := models.Lapak{Lokasi: "Kopo", UserID: pj.ID}
	require.NoError(t, db.Create(&lapak).Error)

	supplier := seedSupplier(t, db, models.PaymentCash, 0)
	product := models.Product{NamaProduk: "Risol", SupplierID: &supplier.ID, HargaBeli: 8000, HargaJual: 10000}
	require.NoError(t, db.Create(&product).Error)

	now := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

	confirmedRep, err := reportSvc.SubmitDailyReport(lapak.ID, now, []report.LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 10},
	}, report.ManualBreakdown{})
	require.NoError(t, err)
	_, err = reportSvc.ConfirmReport(confirmedRep.ID)
	require.NoError(t, err)

	// Laporan pending di hari lain bulan yang sama
	_, err = reportSvc.SubmitDailyReport(lapak.ID, now.AddDate(0, 0, 1), []report.LineInput{
		{ProductID: product.ID, StokAwal: 10, StokAkhir: 5},
	}, report.ManualBreakdown{})
	require.NoError(t, err)

	summary, err := svc.Summary(supplier.ID, now)
	require.NoError(t, err)

	// Hanya laporan terkonfirmasi yang masuk: 20 x 8000
	require.InDelta(t, 160000, summary.PenjualanBulanIni, 0.001)
	require.InDelta(t, 160000, summary.TotalTagihan, 0.001)
}

func TestSalesHistoryConfirmedOnlyWithLapakFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	reportSvc := report.NewService(db)

	pj := models.Admin{NamaLengkap: "Budi", NIK: "123", Username: "budi", Email: "budi@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&pj).Error)
	lapakA := models.Lapak{Lokasi: "Kopo", UserID: pj.ID}
	require.NoError(t, db.Create(&lapakA).Error)
	lapakB := models.Lapak{Lokasi: "Dago", UserID: pj.ID}
	require.NoError(t, db.Create(&lapakB).Error)

	supplier := seedSupplier(t, db, models.PaymentCash, 0)
	product := models.Product{NamaProduk: "Risol", SupplierID: &supplier.ID, HargaBeli: 8000, HargaJual: 10000}
	require.NoError(t, db.Create(&product).Error)

	tanggal := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	for _, l := range []models.Lapak{lapakA, lapakB} {
		rep, err := reportSvc.SubmitDailyReport(l.ID, tanggal, []report.LineInput{
			{ProductID: product.ID, StokAwal: 10, StokAkhir: 4},
		}, report.ManualBreakdown{})
		require.NoError(t, err)
		_, err = reportSvc.ConfirmReport(rep.ID)
		require.NoError(t, err)
	}

	all, err := svc.SalesHistory(supplier.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyA, err := svc.SalesHistory(supplier.ID, lapakA.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	require.Equal(t, "Kopo", onlyA[0].Lokasi)
	require.Equal(t, 6, onlyA[0].Terjual)
	require.InDelta(t, 48000, onlyA[0].TotalBiaya, 0.001)
}
