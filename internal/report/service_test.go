package report

import (
	"testing"
	"time"

	"lapak-backend/internal/database"
	"lapak-backend/internal/models"

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

func seedLapak(t *testing.T, db *gorm.DB) models.Lapak {
	t.Helper()

	pj := models.Admin{
		NamaLengkap:  "Budi Santoso",
		NIK:          "3273010101900001",
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&pj).Error)

	lapak := models.Lapak{Lokasi: "Kopo", UserID: pj.ID}
	require.NoError(t, db.Create(&lapak).Error)
	return lapak
}

func seedSupplierWithProduct(t *testing.T, db *gorm.DB, nama, username string, hargaBeli, hargaJual float64) (models.Supplier, models.Product) {
	t.Helper()

	supplier := models.Supplier{
		NamaSupplier:     nama,
		Username:         username,
		PasswordHash:     "x",
		MetodePembayaran: models.PaymentCash,
	}
	require.NoError(t, db.Create(&supplier).Error)

	product := models.Product{
		NamaProduk: nama + " Risol",
		SupplierID: &supplier.ID,
		HargaBeli:  hargaBeli,
		HargaJual:  hargaJual,
	}
	require.NoError(t, db.Create(&product).Error)
	return supplier, product
}

func supplierBalance(t *testing.T, db *gorm.DB, supplierID uint) float64 {
	t.Helper()

	var balance models.SupplierBalance
	err := db.Where("supplier_id = ?", supplierID).First(&balance).Error
	if err == gorm.ErrRecordNotFound {
		return 0
	}
	require.NoError(t, err)
	return balance.Balance
}

func TestSubmitDailyReportComputesTotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	tanggal := time.Date(2025, 12, 9, 14, 30, 0, 0, time.UTC)
	rep, err := svc.SubmitDailyReport(lapak.ID, tanggal, []LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 10},
	}, ManualBreakdown{})
	require.NoError(t, err)

	require.Equal(t, models.ReportPending, rep.Status)
	require.Equal(t, 20, rep.TotalProdukTerjual)
	require.InDelta(t, 200000, rep.TotalPendapatan, 0.001)
	require.InDelta(t, 160000, rep.TotalBiayaSupplier, 0.001)
	require.Len(t, rep.Items, 1)
	require.Equal(t, 20, rep.Items[0].JumlahTerjual)

	// Tanggal ternormalisasi ke tengah malam
	require.Equal(t, "2025-12-09 00:00", rep.Tanggal.UTC().Format("2006-01-02 15:04"))
}

func TestSubmitDailyReportRejectsDuplicateDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	tanggal := time.Date(2025, 12, 9, 8, 0, 0, 0, time.UTC)
	_, err := svc.SubmitDailyReport(lapak.ID, tanggal, []LineInput{
		{ProductID: product.ID, StokAwal: 10, StokAkhir: 5},
	}, ManualBreakdown{})
	require.NoError(t, err)

	// Jam berbeda di hari sama tetap duplikat
	_, err = svc.SubmitDailyReport(lapak.ID, tanggal.Add(10*time.Hour), []LineInput{
		{ProductID: product.ID, StokAwal: 5, StokAkhir: 2},
	}, ManualBreakdown{})
	require.ErrorIs(t, err, ErrDuplicateReport)

	var count int64
	require.NoError(t, db.Model(&models.DailyReport{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSubmitDailyReportClampsNegativeSales(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	// Stok akhir lebih besar dari stok awal: salah input, bukan penjualan negatif
	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 5, StokAkhir: 12},
	}, ManualBreakdown{})
	require.NoError(t, err)

	require.Equal(t, 0, rep.TotalProdukTerjual)
	require.InDelta(t, 0, rep.TotalPendapatan, 0.001)
	require.Len(t, rep.Items, 1)
	require.Equal(t, 0, rep.Items[0].JumlahTerjual)
	require.Equal(t, 12, rep.Items[0].StokAkhir)
}

func TestSubmitDailyReportSkipsEmptyLines(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 0, StokAkhir: 0},
		{ProductID: product.ID + 99, StokAwal: 3, StokAkhir: 1}, // produk tidak dikenal
	}, ManualBreakdown{})
	require.NoError(t, err)
	require.Empty(t, rep.Items)

	var stocks int64
	require.NoError(t, db.Model(&models.DailyStock{}).Count(&stocks).Error)
	require.EqualValues(t, 0, stocks)
}

func TestSubmitDailyReportCreatesManualProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)

	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: 0, NamaProduk: "Tahu Isi", StokAwal: 10, StokAkhir: 4},
	}, ManualBreakdown{})
	require.NoError(t, err)
	require.Len(t, rep.Items, 1)

	var product models.Product
	require.NoError(t, db.Where("nama_produk = ?", "Tahu Isi").First(&product).Error)
	require.True(t, product.IsManual)
	require.Nil(t, product.SupplierID)
	require.InDelta(t, models.DefaultHargaBeli, product.HargaBeli, 0.001)
	require.InDelta(t, models.DefaultHargaJual, product.HargaJual, 0.001)

	// 6 terjual x harga default
	require.InDelta(t, 6*models.DefaultHargaJual, rep.TotalPendapatan, 0.001)
}

func TestSubmitDailyReportStoresManualBreakdownVerbatim(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	cash, qris, total := 150000.0, 50000.0, 200000.0
	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 10},
	}, ManualBreakdown{Cash: &cash, Qris: &qris, Total: &total})
	require.NoError(t, err)

	// Rekap manual tersimpan apa adanya, terpisah dari total otomatis
	require.NotNil(t, rep.ManualPendapatanCash)
	require.InDelta(t, 150000, *rep.ManualPendapatanCash, 0.001)
	require.NotNil(t, rep.ManualTotalPendapatan)
	require.InDelta(t, 200000, *rep.ManualTotalPendapatan, 0.001)
	require.Nil(t, rep.ManualPendapatanBca)
	require.InDelta(t, 200000, rep.TotalPendapatan, 0.001)
}

func TestSubmitDailyReportRejectsBreakdownMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	cash, total := 100000.0, 150000.0
	_, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 10, StokAkhir: 5},
	}, ManualBreakdown{Cash: &cash, Total: &total})
	require.ErrorIs(t, err, ErrBreakdownMismatch)
}

func TestSubmitDailyReportUnknownLapak(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.SubmitDailyReport(999, time.Now(), nil, ManualBreakdown{})
	require.ErrorIs(t, err, ErrLapakNotFound)
}

func TestConfirmReportCreditsSupplierBalances(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	sari, prodSari := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)
	joko, prodJoko := seedSupplierWithProduct(t, db, "Pak Joko", "joko", 5000, 7000)

	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: prodSari.ID, StokAwal: 30, StokAkhir: 10},
		{ProductID: prodJoko.ID, StokAwal: 20, StokAkhir: 8},
	}, ManualBreakdown{})
	require.NoError(t, err)

	// Belum ada saldo selama laporan masih pending
	require.InDelta(t, 0, supplierBalance(t, db, sari.ID), 0.001)

	confirmed, err := svc.ConfirmReport(rep.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportConfirmed, confirmed.Status)

	require.InDelta(t, 160000, supplierBalance(t, db, sari.ID), 0.001) // 20 x 8000
	require.InDelta(t, 60000, supplierBalance(t, db, joko.ID), 0.001)  // 12 x 5000
}

func TestConfirmReportTwiceDoesNotDoubleCredit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	sari, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 10},
	}, ManualBreakdown{})
	require.NoError(t, err)

	_, err = svc.ConfirmReport(rep.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmReport(rep.ID)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)

	require.InDelta(t, 160000, supplierBalance(t, db, sari.ID), 0.001)
}

func TestConfirmReportStatusGuardBlocksCredit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	sari, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 10},
	}, ManualBreakdown{})
	require.NoError(t, err)

	// Penulis lain keburu mengkonfirmasi setelah laporan ini terbaca:
	// flip status bersyarat harus berhenti sebelum kredit apa pun jalan.
	require.NoError(t, db.Model(&models.DailyReport{}).
		Where("id = ?", rep.ID).
		Update("status", models.ReportConfirmed).Error)

	_, err = svc.ConfirmReport(rep.ID)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
	require.InDelta(t, 0, supplierBalance(t, db, sari.ID), 0.001)
}

func TestSubmitDailyReportRejectsDuplicateProductLines(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	_, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 10},
		{ProductID: product.ID, StokAwal: 10, StokAkhir: 5},
	}, ManualBreakdown{})
	require.ErrorIs(t, err, ErrDuplicateLine)

	var count int64
	require.NoError(t, db.Model(&models.DailyReport{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestConfirmReportSkipsManualProducts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	sari, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	rep, err := svc.SubmitDailyReport(lapak.ID, time.Now(), []LineInput{
		{ProductID: product.ID, StokAwal: 10, StokAkhir: 5},
		{ProductID: 0, NamaProduk: "Tahu Isi", StokAwal: 8, StokAkhir: 3},
	}, ManualBreakdown{})
	require.NoError(t, err)

	_, err = svc.ConfirmReport(rep.ID)
	require.NoError(t, err)

	// Produk manual tanpa supplier tidak menambah tagihan siapa pun
	require.InDelta(t, 40000, supplierBalance(t, db, sari.ID), 0.001)

	var balances int64
	require.NoError(t, db.Model(&models.SupplierBalance{}).Count(&balances).Error)
	require.EqualValues(t, 1, balances)
}

func TestConfirmReportNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.ConfirmReport(12345)
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestGetOpeningStockUsesLatestSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	day1 := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	_, err := svc.SubmitDailyReport(lapak.ID, day1, []LineInput{
		{ProductID: product.ID, StokAwal: 30, StokAkhir: 12},
	}, ManualBreakdown{})
	require.NoError(t, err)

	stok, err := svc.GetOpeningStock(lapak.ID, product.ID, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 12, stok)

	// Tanpa snapshot sebelumnya: 0
	stok, err = svc.GetOpeningStock(lapak.ID, product.ID, day1)
	require.NoError(t, err)
	require.Equal(t, 0, stok)
}

func TestHasReportForDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	lapak := seedLapak(t, db)
	_, product := seedSupplierWithProduct(t, db, "Ibu Sari", "sari", 8000, 10000)

	tanggal := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)
	exists, err := svc.HasReportForDate(lapak.ID, tanggal)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = svc.SubmitDailyReport(lapak.ID, tanggal, []LineInput{
		{ProductID: product.ID, StokAwal: 10, StokAkhir: 5},
	}, ManualBreakdown{})
	require.NoError(t, err)

	exists, err = svc.HasReportForDate(lapak.ID, tanggal.Add(20*time.Hour))
	require.NoError(t, err)
	require.True(t, exists)
}
