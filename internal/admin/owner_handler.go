package admin

import (
	"time"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/get_data_owner
// Ringkasan bulan berjalan untuk dashboard owner. Pendapatan dan biaya
// hanya dihitung dari laporan terkonfirmasi.
func OwnerDataHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		nextMonth := monthStart.AddDate(0, 1, 0)

		var totals struct {
			Pendapatan float64
			Biaya      float64
		}
		err := db.Model(&models.DailyReport{}).
			Select("COALESCE(SUM(total_pendapatan), 0) AS pendapatan, COALESCE(SUM(total_biaya_supplier), 0) AS biaya").
			Where("status = ?", models.ReportConfirmed).
			Where("tanggal >= ? AND tanggal < ?", monthStart, nextMonth).
			Scan(&totals).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ringkasan gagal dihitung")
		}

		var pembayaran float64
		err = db.Model(&models.SupplierPayment{}).
			Select("COALESCE(SUM(jumlah), 0)").
			Where("tanggal >= ? AND tanggal < ?", monthStart, nextMonth).
			Scan(&pembayaran).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ringkasan gagal dihitung")
		}

		var pendingCount int64
		if err := db.Model(&models.DailyReport{}).Where("status = ?", models.ReportPending).Count(&pendingCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ringkasan gagal dihitung")
		}

		var totalTagihan float64
		err = db.Model(&models.SupplierBalance{}).
			Select("COALESCE(SUM(balance), 0)").
			Scan(&totalTagihan).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ringkasan gagal dihitung")
		}

		var lapakCount, supplierCount int64
		db.Model(&models.Lapak{}).Count(&lapakCount)
		db.Model(&models.Supplier{}).Count(&supplierCount)

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"bulan":                  monthStart.Format("2006-01"),
				"pendapatan_bulan_ini":   totals.Pendapatan,
				"biaya_bulan_ini":        totals.Biaya,
				"pembayaran_bulan_ini":   pembayaran,
				"laporan_pending":        pendingCount,
				"total_tagihan_berjalan": totalTagihan,
				"jumlah_lapak":           lapakCount,
				"jumlah_supplier":        supplierCount,
			},
		})
	}
}
