package ledger

import (
	"errors"
	"fmt"
	"time"

	"lapak-backend/internal/audit"
	"lapak-backend/internal/auth"
	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type SubmitPaymentRequest struct {
	SupplierID uint    `json:"supplier_id"`
	Jumlah     float64 `json:"jumlah"`
	Metode     string  `json:"metode"`  // opsional, default dari profil supplier
	Tanggal    string  `json:"tanggal"` // opsional, default hari ini
}

// POST /api/submit_pembayaran
func SubmitPaymentHandler(svc *Service, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubmitPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}
		if body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id wajib diisi")
		}

		tanggal := time.Now()
		if body.Tanggal != "" {
			var err error
			tanggal, err = time.Parse("2006-01-02", body.Tanggal)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "tanggal tidak valid, format YYYY-MM-DD")
			}
		}

		payment, err := svc.RecordPayment(body.SupplierID, body.Jumlah, models.PaymentMethod(body.Metode), tanggal)
		if err != nil {
			switch {
			case errors.Is(err, ErrSupplierNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Supplier tidak ditemukan")
			case errors.Is(err, ErrInvalidAmount):
				return fiber.NewError(fiber.StatusBadRequest, "Jumlah pembayaran harus lebih dari nol")
			case errors.Is(err, ErrPaymentMethodNotSet):
				return fiber.NewError(fiber.StatusBadRequest, "Metode pembayaran supplier belum diatur")
			case errors.Is(err, ErrInsufficientBalance):
				return fiber.NewError(fiber.StatusBadRequest, "Jumlah pembayaran melebihi total tagihan")
			}
			log.Error().Err(err).Uint("supplier_id", body.SupplierID).Msg("pembayaran supplier gagal")
			return fiber.NewError(fiber.StatusInternalServerError, "Pembayaran gagal disimpan")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		userName, _ := c.Locals(auth.CtxUsernameKey).(string)
		if logErr := auditLog.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "supplier_payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Pembayaran supplier %d sejumlah %.2f via %s", payment.SupplierID, payment.Jumlah, payment.Metode),
			After:       payment,
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("audit log gagal ditulis")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":   true,
			"message":   "Pembayaran berhasil dicatat.",
			"reference": payment.Reference,
		})
	}
}

// GET /api/get_pembayaran_data
func GetBalancesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.Balances()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Data pembayaran gagal diambil")
		}
		return c.JSON(fiber.Map{"success": true, "suppliers": entries})
	}
}

type PaymentHistoryEntry struct {
	ID           uint    `json:"id"`
	NamaSupplier string  `json:"nama_supplier"`
	Tanggal      string  `json:"tanggal"`
	Jumlah       float64 `json:"jumlah"`
	Metode       string  `json:"metode"`
	Reference    string  `json:"reference"`
}

// GET /api/get_all_payment_history?supplier_id=...&from=...&to=...
func PaymentHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter HistoryFilter

		if sid := c.QueryInt("supplier_id", 0); sid > 0 {
			filter.SupplierID = uint(sid)
		}
		// "semua" dari dropdown frontend berarti tanpa filter
		if m := c.Query("metode"); m != "" && m != "semua" {
			filter.Metode = models.PaymentMethod(m)
		}
		if str := c.Query("from"); str != "" {
			from, err := time.Parse("2006-01-02", str)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tidak valid")
			}
			filter.From = &from
		}
		if str := c.Query("to"); str != "" {
			to, err := time.Parse("2006-01-02", str)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tidak valid")
			}
			filter.To = &to
		}

		payments, err := svc.History(filter)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Riwayat pembayaran gagal diambil")
		}

		resp := make([]PaymentHistoryEntry, 0, len(payments))
		for _, p := range payments {
			resp = append(resp, PaymentHistoryEntry{
				ID:           p.ID,
				NamaSupplier: p.Supplier.NamaSupplier,
				Tanggal:      p.Tanggal.Format("2006-01-02"),
				Jumlah:       p.Jumlah,
				Metode:       string(p.Metode),
				Reference:    p.Reference,
			})
		}
		return c.JSON(fiber.Map{"success": true, "payments": resp})
	}
}

// GET /api/get_data_supplier/:supplier_id
func SupplierSummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := c.ParamsInt("supplier_id")
		if err != nil || supplierID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id tidak valid")
		}

		summary, err := svc.Summary(uint(supplierID), time.Now())
		if err != nil {
			if errors.Is(err, ErrSupplierNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Supplier tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Data supplier gagal diambil")
		}
		return c.JSON(fiber.Map{"success": true, "data": summary})
	}
}

// GET /api/get_supplier_history/:supplier_id?lapak_id=...
func SupplierSalesHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := c.ParamsInt("supplier_id")
		if err != nil || supplierID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id tidak valid")
		}

		lapakID := uint(c.QueryInt("lapak_id", 0))
		entries, err := svc.SalesHistory(uint(supplierID), lapakID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Riwayat penjualan gagal diambil")
		}
		return c.JSON(fiber.Map{"success": true, "history": entries})
	}
}
