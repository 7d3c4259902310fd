package admin

import (
	"errors"
	"fmt"
	"strings"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SupplierRequest struct {
	NamaSupplier     string `json:"nama_supplier"`
	Username         string `json:"username"`
	Kontak           string `json:"kontak"`
	Alamat           string `json:"alamat"`
	Password         string `json:"password"`
	MetodePembayaran string `json:"metode_pembayaran"`
	NomorRekening    string `json:"nomor_rekening"`
}

type SupplierResponse struct {
	ID               uint   `json:"id"`
	NamaSupplier     string `json:"nama_supplier"`
	Username         string `json:"username"`
	Kontak           string `json:"kontak"`
	NomorRegister    string `json:"nomor_register"`
	Alamat           string `json:"alamat"`
	MetodePembayaran string `json:"metode_pembayaran"`
	NomorRekening    string `json:"nomor_rekening"`
	JumlahProduk     int    `json:"jumlah_produk"`
}

func toSupplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:               s.ID,
		NamaSupplier:     s.NamaSupplier,
		Username:         s.Username,
		Kontak:           s.Kontak,
		NomorRegister:    s.NomorRegister,
		Alamat:           s.Alamat,
		MetodePembayaran: string(s.MetodePembayaran),
		NomorRekening:    s.NomorRekening,
		JumlahProduk:     len(s.Products),
	}
}

func validPaymentMethod(m string) bool {
	switch models.PaymentMethod(m) {
	case models.PaymentCash, models.PaymentQris, models.PaymentTransfer:
		return true
	}
	return false
}

// GET /api/get_suppliers
func ListSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := db.Preload("Products").Order("nama_supplier").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Daftar supplier gagal diambil")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			resp = append(resp, toSupplierResponse(s))
		}
		return c.JSON(fiber.Map{"success": true, "suppliers": resp})
	}
}

// GET /api/get_next_supplier_reg_number
func NextRegNumberHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := nextRegNumber(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Nomor register gagal dihitung")
		}
		return c.JSON(fiber.Map{"nomor_register": reg})
	}
}

// Nomor register berurutan: REG001, REG002, ...
func nextRegNumber(db *gorm.DB) (string, error) {
	var last models.Supplier
	err := db.Where("nomor_register LIKE 'REG%'").
		Order("nomor_register desc").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "REG001", nil
		}
		return "", err
	}

	var n int
	if _, err := fmt.Sscanf(last.NomorRegister, "REG%d", &n); err != nil {
		n = 0
	}
	return fmt.Sprintf("REG%03d", n+1), nil
}

// POST /api/add_supplier
// Supplier baru langsung dapat baris saldo 0 supaya kredit pertama tidak
// perlu jalur pembuatan terpisah.
func CreateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		if body.NamaSupplier == "" || body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nama, username dan password wajib diisi")
		}
		if body.MetodePembayaran != "" && !validPaymentMethod(body.MetodePembayaran) {
			return fiber.NewError(fiber.StatusBadRequest, "Metode pembayaran harus cash, qris atau transfer")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password gagal di-hash")
		}

		var supplier models.Supplier
		err = db.Transaction(func(tx *gorm.DB) error {
			reg, err := nextRegNumber(tx)
			if err != nil {
				return err
			}

			supplier = models.Supplier{
				NamaSupplier:     body.NamaSupplier,
				Username:         body.Username,
				Kontak:           body.Kontak,
				NomorRegister:    reg,
				Alamat:           body.Alamat,
				PasswordHash:     string(hash),
				MetodePembayaran: models.PaymentMethod(body.MetodePembayaran),
				NomorRekening:    body.NomorRekening,
			}
			if err := tx.Create(&supplier).Error; err != nil {
				return err
			}
			return tx.Create(&models.SupplierBalance{SupplierID: supplier.ID, Balance: 0}).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Username supplier sudah terpakai")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Supplier gagal dibuat")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "supplier": toSupplierResponse(supplier)})
	}
}

// PUT /api/update_supplier/:supplier_id
func UpdateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := c.ParamsInt("supplier_id")
		if err != nil || supplierID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id tidak valid")
		}

		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		var supplier models.Supplier
		if err := db.First(&supplier, supplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Supplier tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Supplier gagal diambil")
		}

		if body.NamaSupplier != "" {
			supplier.NamaSupplier = body.NamaSupplier
		}
		if body.Kontak != "" {
			supplier.Kontak = body.Kontak
		}
		if body.Alamat != "" {
			supplier.Alamat = body.Alamat
		}
		if body.MetodePembayaran != "" {
			if !validPaymentMethod(body.MetodePembayaran) {
				return fiber.NewError(fiber.StatusBadRequest, "Metode pembayaran harus cash, qris atau transfer")
			}
			supplier.MetodePembayaran = models.PaymentMethod(body.MetodePembayaran)
		}
		if body.NomorRekening != "" {
			supplier.NomorRekening = body.NomorRekening
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Password gagal di-hash")
			}
			supplier.PasswordHash = string(hash)
		}

		if err := db.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Supplier gagal diperbarui")
		}

		return c.JSON(fiber.Map{"success": true, "supplier": toSupplierResponse(supplier)})
	}
}

// DELETE /api/delete_supplier/:supplier_id
// Ditolak kalau produknya sudah muncul di rincian laporan; riwayat penjualan
// harus tetap bisa ditelusuri.
func DeleteSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := c.ParamsInt("supplier_id")
		if err != nil || supplierID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id tidak valid")
		}

		var supplier models.Supplier
		if err := db.First(&supplier, supplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Supplier tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Supplier gagal diambil")
		}

		var used int64
		err = db.Model(&models.ReportItem{}).
			Joins("JOIN products ON products.id = report_items.product_id").
			Where("products.supplier_id = ?", supplierID).
			Count(&used).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Pengecekan laporan gagal")
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Produk supplier sudah masuk laporan, tidak bisa dihapus")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var productIDs []uint
			if err := tx.Model(&models.Product{}).
				Where("supplier_id = ?", supplierID).
				Pluck("id", &productIDs).Error; err != nil {
				return err
			}
			if len(productIDs) > 0 {
				if err := tx.Exec("DELETE FROM product_lapak WHERE product_id IN ?", productIDs).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", productIDs).Delete(&models.Product{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("supplier_id = ?", supplierID).Delete(&models.SupplierPayment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("supplier_id = ?", supplierID).Delete(&models.SupplierBalance{}).Error; err != nil {
				return err
			}
			return tx.Delete(&supplier).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Supplier gagal dihapus")
		}

		return c.JSON(fiber.Map{"success": true, "message": "Supplier berhasil dihapus."})
	}
}
