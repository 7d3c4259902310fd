package report

import (
	"errors"
	"fmt"
	"time"

	"lapak-backend/internal/audit"
	"lapak-backend/internal/auth"
	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type SubmitLineRequest struct {
	ID         uint   `json:"id"` // 0 = produk baru
	NamaProduk string `json:"nama_produk"`
	SupplierID *uint  `json:"supplier_id"` // nil = produk manual
	StokAwal   int    `json:"stok_awal"`
	StokAkhir  int    `json:"stok_akhir"`
}

type RekapPembayaranRequest struct {
	Cash  *float64 `json:"cash"`
	Qris  *float64 `json:"qris"`
	Bca   *float64 `json:"bca"`
	Total *float64 `json:"total"`
}

type SubmitDailyReportRequest struct {
	LapakID         uint                   `json:"lapak_id"`
	Tanggal         string                 `json:"tanggal"` // opsional, default hari ini
	Products        []SubmitLineRequest    `json:"products"`
	RekapPembayaran RekapPembayaranRequest `json:"rekap_pembayaran"`
}

type ReportSummaryResponse struct {
	ID                 uint    `json:"id"`
	Tanggal            string  `json:"tanggal"`
	TotalPendapatan    float64 `json:"total_pendapatan"`
	TotalProdukTerjual int     `json:"total_produk_terjual"`
	Status             string  `json:"status"`
}

func getUserInfo(c *fiber.Ctx) (uint, string) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	username, _ := c.Locals(auth.CtxUsernameKey).(string)
	return userID, username
}

func parseDateQuery(c *fiber.Ctx, key string) (time.Time, error) {
	str := c.Query(key)
	if str == "" {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, key+" wajib diisi")
	}
	d, err := time.Parse("2006-01-02", str)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid, format YYYY-MM-DD")
	}
	return d, nil
}

// -------------------------
// Lapak Handlers
// -------------------------

// GET /api/get_data_buat_catatan/:lapak_id
// Katalog supplier+produk untuk form catatan. 409 kalau laporan hari ini sudah ada.
func GetCatalogHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lapakID, err := c.ParamsInt("lapak_id")
		if err != nil || lapakID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lapak_id tidak valid")
		}

		exists, err := svc.HasReportForDate(uint(lapakID), time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Pengecekan laporan gagal")
		}
		if exists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success":        false,
				"message":        "Laporan untuk hari ini sudah dibuat.",
				"already_exists": true,
			})
		}

		catalog, err := svc.GetCatalog(uint(lapakID))
		if err != nil {
			if errors.Is(err, ErrLapakNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Lapak tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Katalog gagal diambil")
		}

		return c.JSON(fiber.Map{"success": true, "data": catalog})
	}
}

// GET /api/get_stok_awal/:lapak_id/:product_id?date=2025-12-09
func GetOpeningStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lapakID, err := c.ParamsInt("lapak_id")
		if err != nil || lapakID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lapak_id tidak valid")
		}
		productID, err := c.ParamsInt("product_id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id tidak valid")
		}

		tanggal := time.Now()
		if str := c.Query("date"); str != "" {
			tanggal, err = time.Parse("2006-01-02", str)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date tidak valid, format YYYY-MM-DD")
			}
		}

		stok, err := svc.GetOpeningStock(uint(lapakID), uint(productID), tanggal)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok awal gagal diambil")
		}
		return c.JSON(fiber.Map{"stok_awal": stok})
	}
}

// POST /api/submit_catatan_harian
func SubmitDailyReportHandler(svc *Service, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubmitDailyReportRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}
		if body.LapakID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lapak_id wajib diisi")
		}

		tanggal := time.Now()
		if body.Tanggal != "" {
			var err error
			tanggal, err = time.Parse("2006-01-02", body.Tanggal)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "tanggal tidak valid, format YYYY-MM-DD")
			}
		}

		lines := make([]LineInput, 0, len(body.Products))
		for _, p := range body.Products {
			lines = append(lines, LineInput{
				ProductID:  p.ID,
				NamaProduk: p.NamaProduk,
				SupplierID: p.SupplierID,
				StokAwal:   p.StokAwal,
				StokAkhir:  p.StokAkhir,
			})
		}

		manual := ManualBreakdown{
			Cash:  body.RekapPembayaran.Cash,
			Qris:  body.RekapPembayaran.Qris,
			Bca:   body.RekapPembayaran.Bca,
			Total: body.RekapPembayaran.Total,
		}

		rep, err := svc.SubmitDailyReport(body.LapakID, tanggal, lines, manual)
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicateReport):
				return fiber.NewError(fiber.StatusConflict, "Laporan untuk hari ini sudah pernah dibuat.")
			case errors.Is(err, ErrLapakNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Lapak tidak ditemukan")
			case errors.Is(err, ErrBreakdownMismatch):
				return fiber.NewError(fiber.StatusBadRequest, "Rincian pembayaran manual tidak sama dengan totalnya")
			case errors.Is(err, ErrDuplicateLine):
				return fiber.NewError(fiber.StatusBadRequest, "Produk yang sama muncul lebih dari sekali dalam laporan")
			}
			log.Error().Err(err).Uint("lapak_id", body.LapakID).Msg("submit laporan harian gagal")
			return fiber.NewError(fiber.StatusInternalServerError, "Laporan gagal disimpan")
		}

		userID, userName := getUserInfo(c)
		if logErr := auditLog.WriteLog(audit.LogOptions{
			LapakID:     &rep.LapakID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "daily_report",
			EntityID:    rep.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Laporan harian dibuat: lapak %d, %s, pendapatan %.2f", rep.LapakID, rep.Tanggal.Format("2006-01-02"), rep.TotalPendapatan),
			After:       rep,
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("audit log gagal ditulis")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "Laporan harian berhasil dikirim!",
			"report": ReportSummaryResponse{
				ID:                 rep.ID,
				Tanggal:            rep.Tanggal.Format("2006-01-02"),
				TotalPendapatan:    rep.TotalPendapatan,
				TotalProdukTerjual: rep.TotalProdukTerjual,
				Status:             string(rep.Status),
			},
		})
	}
}

// GET /api/get_history_laporan/:lapak_id
func ReportHistoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lapakID, err := c.ParamsInt("lapak_id")
		if err != nil || lapakID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lapak_id tidak valid")
		}

		var reports []models.DailyReport
		if err := db.Where("lapak_id = ?", lapakID).Order("tanggal desc").Find(&reports).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Riwayat laporan gagal diambil")
		}

		resp := make([]ReportSummaryResponse, 0, len(reports))
		for _, r := range reports {
			resp = append(resp, ReportSummaryResponse{
				ID:                 r.ID,
				Tanggal:            r.Tanggal.Format("2006-01-02"),
				TotalPendapatan:    r.TotalPendapatan,
				TotalProdukTerjual: r.TotalProdukTerjual,
				Status:             string(r.Status),
			})
		}
		return c.JSON(fiber.Map{"success": true, "reports": resp})
	}
}

// -------------------------
// Owner Handlers
// -------------------------

// POST /api/confirm_report/:report_id
func ConfirmReportHandler(svc *Service, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reportID, err := c.ParamsInt("report_id")
		if err != nil || reportID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "report_id tidak valid")
		}

		rep, err := svc.ConfirmReport(uint(reportID))
		if err != nil {
			switch {
			case errors.Is(err, ErrReportNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Laporan tidak ditemukan.")
			case errors.Is(err, ErrAlreadyConfirmed):
				return fiber.NewError(fiber.StatusBadRequest, "Laporan ini sudah dikonfirmasi.")
			}
			log.Error().Err(err).Int("report_id", reportID).Msg("konfirmasi laporan gagal")
			return fiber.NewError(fiber.StatusInternalServerError, "Laporan gagal dikonfirmasi")
		}

		userID, userName := getUserInfo(c)
		if logErr := auditLog.WriteLog(audit.LogOptions{
			LapakID:     &rep.LapakID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "daily_report",
			EntityID:    rep.ID,
			Action:      models.AuditActionConfirm,
			Description: fmt.Sprintf("Laporan %s lapak %d dikonfirmasi, biaya supplier %.2f", rep.Tanggal.Format("2006-01-02"), rep.LapakID, rep.TotalBiayaSupplier),
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("audit log gagal ditulis")
		}

		return c.JSON(fiber.Map{"success": true, "message": "Laporan berhasil dikonfirmasi."})
	}
}

type ManageReportEntry struct {
	ID                 uint    `json:"id"`
	Lokasi             string  `json:"lokasi"`
	PenanggungJawab    string  `json:"penanggung_jawab"`
	Tanggal            string  `json:"tanggal"`
	TotalPendapatan    float64 `json:"total_pendapatan"`
	TotalProdukTerjual int     `json:"total_produk_terjual"`
	Status             string  `json:"status"`
}

// GET /api/get_manage_reports?start_date=...&end_date=...&supplier_id=...
func ManageReportsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.DailyReport{}).
			Preload("Lapak").
			Preload("Lapak.PenanggungJawab")

		if str := c.Query("start_date"); str != "" {
			start, err := time.Parse("2006-01-02", str)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date tidak valid")
			}
			q = q.Where("daily_reports.tanggal >= ?", start)
		}
		if str := c.Query("end_date"); str != "" {
			end, err := time.Parse("2006-01-02", str)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date tidak valid")
			}
			q = q.Where("daily_reports.tanggal <= ?", end)
		}
		if str := c.Query("supplier_id"); str != "" {
			var sid uint
			if _, err := fmt.Sscan(str, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id tidak valid")
			}
			// Laporan yang menyentuh supplier ini lewat rincian produknya
			q = q.Joins("JOIN report_items ON report_items.laporan_id = daily_reports.id").
				Joins("JOIN products ON products.id = report_items.product_id").
				Where("products.supplier_id = ?", sid).
				Distinct()
		}

		var reports []models.DailyReport
		if err := q.Order("daily_reports.tanggal desc").Find(&reports).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Daftar laporan gagal diambil")
		}

		resp := make([]ManageReportEntry, 0, len(reports))
		for _, r := range reports {
			resp = append(resp, ManageReportEntry{
				ID:                 r.ID,
				Lokasi:             r.Lapak.Lokasi,
				PenanggungJawab:    r.Lapak.PenanggungJawab.NamaLengkap,
				Tanggal:            r.Tanggal.Format("2006-01-02"),
				TotalPendapatan:    r.TotalPendapatan,
				TotalProdukTerjual: r.TotalProdukTerjual,
				Status:             string(r.Status),
			})
		}
		return c.JSON(fiber.Map{"success": true, "reports": resp})
	}
}

type ReportDetailItem struct {
	NamaProduk      string  `json:"nama_produk"`
	StokAwal        int     `json:"stok_awal"`
	StokAkhir       int     `json:"stok_akhir"`
	Terjual         int     `json:"terjual"`
	HargaJual       float64 `json:"harga_jual"`
	TotalPendapatan float64 `json:"total_pendapatan"`
	TotalBiaya      float64 `json:"total_biaya"`
}

// GET /api/get_report_details/:report_id
func ReportDetailsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reportID, err := c.ParamsInt("report_id")
		if err != nil || reportID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "report_id tidak valid")
		}

		var rep models.DailyReport
		err = db.
			Preload("Lapak").
			Preload("Lapak.PenanggungJawab").
			Preload("Items").
			Preload("Items.Product").
			Preload("Items.Product.Supplier").
			First(&rep, reportID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Laporan tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Detail laporan gagal diambil")
		}

		// Rincian dikelompokkan per supplier; produk manual masuk kelompok sendiri
		rincianPerSupplier := make(map[string][]ReportDetailItem)
		for _, item := range rep.Items {
			supplierName := "Produk Manual"
			if item.Product.Supplier != nil {
				supplierName = item.Product.Supplier.NamaSupplier
			}
			rincianPerSupplier[supplierName] = append(rincianPerSupplier[supplierName], ReportDetailItem{
				NamaProduk:      item.Product.NamaProduk,
				StokAwal:        item.StokAwal,
				StokAkhir:       item.StokAkhir,
				Terjual:         item.JumlahTerjual,
				HargaJual:       item.HargaJual,
				TotalPendapatan: item.TotalHargaJual,
				TotalBiaya:      item.TotalHargaBeli,
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":                   rep.ID,
				"tanggal":              rep.Tanggal.Format("2006-01-02"),
				"status":               rep.Status,
				"lokasi":               rep.Lapak.Lokasi,
				"penanggung_jawab":     rep.Lapak.PenanggungJawab.NamaLengkap,
				"rincian_per_supplier": rincianPerSupplier,
				"rekap_otomatis": fiber.Map{
					"terjual_cash":         rep.PendapatanCash,
					"terjual_qris":         rep.PendapatanQris,
					"terjual_bca":          rep.PendapatanBca,
					"total_produk_terjual": rep.TotalProdukTerjual,
					"total_pendapatan":     rep.TotalPendapatan,
					"total_biaya_supplier": rep.TotalBiayaSupplier,
				},
				"rekap_manual": fiber.Map{
					"terjual_cash":     rep.ManualPendapatanCash,
					"terjual_qris":     rep.ManualPendapatanQris,
					"terjual_bca":      rep.ManualPendapatanBca,
					"total_pendapatan": rep.ManualTotalPendapatan,
				},
			},
		})
	}
}

type DailyBreakdownItem struct {
	Produk   string  `json:"produk"`
	Supplier string  `json:"supplier"`
	Jumlah   int     `json:"jumlah"`
	Nominal  float64 `json:"nominal"`
}

type DailyBreakdownLapak struct {
	Lokasi          string               `json:"lokasi"`
	PenanggungJawab string               `json:"penanggung_jawab"`
	Total           float64              `json:"total"`
	Rincian         []DailyBreakdownItem `json:"rincian"`
}

// GET /api/get_laporan_pendapatan_harian?date=2025-12-09
// Hanya laporan terkonfirmasi yang dihitung.
func DailyRevenueHandler(db *gorm.DB) fiber.Handler {
	return dailyBreakdownHandler(db, false)
}

// GET /api/get_laporan_biaya_harian?date=2025-12-09
func DailyCostHandler(db *gorm.DB) fiber.Handler {
	return dailyBreakdownHandler(db, true)
}

func dailyBreakdownHandler(db *gorm.DB, useCost bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := parseDateQuery(c, "date")
		if err != nil {
			return err
		}

		var reports []models.DailyReport
		err = db.
			Preload("Lapak").
			Preload("Lapak.PenanggungJawab").
			Preload("Items").
			Preload("Items.Product").
			Preload("Items.Product.Supplier").
			Where("tanggal = ? AND status = ?", dateOnly(target), models.ReportConfirmed).
			Find(&reports).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Laporan harian gagal diambil")
		}

		var totalHarian float64
		perLapak := make([]DailyBreakdownLapak, 0, len(reports))

		for _, rep := range reports {
			entry := DailyBreakdownLapak{
				Lokasi:          rep.Lapak.Lokasi,
				PenanggungJawab: rep.Lapak.PenanggungJawab.NamaLengkap,
			}
			if useCost {
				entry.Total = rep.TotalBiayaSupplier
			} else {
				entry.Total = rep.TotalPendapatan
			}

			for _, item := range rep.Items {
				if item.JumlahTerjual == 0 {
					continue
				}
				supplierName := "Produk Manual"
				if item.Product.Supplier != nil {
					supplierName = item.Product.Supplier.NamaSupplier
				}
				nominal := item.TotalHargaJual
				if useCost {
					nominal = item.TotalHargaBeli
				}
				entry.Rincian = append(entry.Rincian, DailyBreakdownItem{
					Produk:   item.Product.NamaProduk,
					Supplier: supplierName,
					Jumlah:   item.JumlahTerjual,
					Nominal:  nominal,
				})
			}

			if len(entry.Rincian) > 0 {
				totalHarian += entry.Total
				perLapak = append(perLapak, entry)
			}
		}

		return c.JSON(fiber.Map{
			"total_harian":      totalHarian,
			"laporan_per_lapak": perLapak,
		})
	}
}
