package dashboard

import (
	"fmt"
	"time"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/get_chart_data?year=2025&month=12
// Deret harian pendapatan (laporan terkonfirmasi) dan biaya (pembayaran
// supplier) untuk grafik bulanan owner.
func ChartDataHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().UTC()
		year := c.QueryInt("year", now.Year())
		month := c.QueryInt("month", int(now.Month()))
		if year < 2000 || year > 2100 || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "year atau month tidak valid")
		}

		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		nextMonth := monthStart.AddDate(0, 1, 0)
		numDays := nextMonth.AddDate(0, 0, -1).Day()

		labels := make([]string, numDays)
		pendapatan := make([]float64, numDays)
		biaya := make([]float64, numDays)
		for i := 0; i < numDays; i++ {
			labels[i] = fmt.Sprintf("%d", i+1)
		}

		var reports []models.DailyReport
		err := db.
			Where("status = ? AND tanggal >= ? AND tanggal < ?", models.ReportConfirmed, monthStart, nextMonth).
			Find(&reports).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Data grafik gagal diambil")
		}
		for _, r := range reports {
			pendapatan[r.Tanggal.Day()-1] += r.TotalPendapatan
		}

		var payments []models.SupplierPayment
		err = db.
			Where("tanggal >= ? AND tanggal < ?", monthStart, nextMonth).
			Find(&payments).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Data grafik gagal diambil")
		}
		for _, p := range payments {
			biaya[p.Tanggal.Day()-1] += p.Jumlah
		}

		return c.JSON(fiber.Map{
			"labels":          labels,
			"pendapatan_data": pendapatan,
			"biaya_data":      biaya,
		})
	}
}
