package admin

import (
	"errors"
	"strings"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminRequest struct {
	NamaLengkap string `json:"nama_lengkap"`
	NIK         string `json:"nik"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	NomorKontak string `json:"nomor_kontak"`
	Password    string `json:"password"` // kosong saat update = tidak diganti
}

type AdminResponse struct {
	ID          uint   `json:"id"`
	NamaLengkap string `json:"nama_lengkap"`
	NIK         string `json:"nik"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	NomorKontak string `json:"nomor_kontak"`
}

func toAdminResponse(a models.Admin) AdminResponse {
	return AdminResponse{
		ID:          a.ID,
		NamaLengkap: a.NamaLengkap,
		NIK:         a.NIK,
		Username:    a.Username,
		Email:       a.Email,
		NomorKontak: a.NomorKontak,
	}
}

// GET /api/get_admins
func ListAdminsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var admins []models.Admin
		if err := db.Order("nama_lengkap").Find(&admins).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Daftar admin gagal diambil")
		}

		resp := make([]AdminResponse, 0, len(admins))
		for _, a := range admins {
			resp = append(resp, toAdminResponse(a))
		}
		return c.JSON(fiber.Map{"success": true, "admins": resp})
	}
}

// POST /api/add_admin
func CreateAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.NamaLengkap == "" || body.Username == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nama, username, email dan password wajib diisi")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password gagal di-hash")
		}

		admin := models.Admin{
			NamaLengkap:  body.NamaLengkap,
			NIK:          body.NIK,
			Username:     body.Username,
			Email:        body.Email,
			NomorKontak:  body.NomorKontak,
			PasswordHash: string(hash),
		}
		if err := db.Create(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Username, email atau NIK sudah terpakai")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Admin gagal dibuat")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "admin": toAdminResponse(admin)})
	}
}

// PUT /api/update_admin/:admin_id
func UpdateAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := c.ParamsInt("admin_id")
		if err != nil || adminID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "admin_id tidak valid")
		}

		var body AdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		var admin models.Admin
		if err := db.First(&admin, adminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Admin tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Admin gagal diambil")
		}

		if body.NamaLengkap != "" {
			admin.NamaLengkap = body.NamaLengkap
		}
		if body.NIK != "" {
			admin.NIK = body.NIK
		}
		if body.Email != "" {
			admin.Email = strings.TrimSpace(strings.ToLower(body.Email))
		}
		if body.NomorKontak != "" {
			admin.NomorKontak = body.NomorKontak
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Password gagal di-hash")
			}
			admin.PasswordHash = string(hash)
		}

		if err := db.Save(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Email atau NIK sudah terpakai")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Admin gagal diperbarui")
		}

		return c.JSON(fiber.Map{"success": true, "admin": toAdminResponse(admin)})
	}
}

// DELETE /api/delete_admin/:admin_id
// Admin yang masih jadi penanggung jawab lapak tidak boleh dihapus.
func DeleteAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, err := c.ParamsInt("admin_id")
		if err != nil || adminID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "admin_id tidak valid")
		}

		var admin models.Admin
		if err := db.First(&admin, adminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Admin tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Admin gagal diambil")
		}

		var count int64
		if err := db.Model(&models.Lapak{}).Where("user_id = ?", adminID).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Pengecekan lapak gagal")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Admin masih jadi penanggung jawab lapak, pindahkan dulu")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM lapak_anggota WHERE admin_id = ?", adminID).Error; err != nil {
				return err
			}
			return tx.Delete(&admin).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Admin gagal dihapus")
		}

		return c.JSON(fiber.Map{"success": true, "message": "Admin berhasil dihapus."})
	}
}
