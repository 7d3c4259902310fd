package auth

import (
	"errors"
	"strings"

	"lapak-backend/internal/config"
	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const ownerUsername = "owner"

type RegisterOwnerRequest struct {
	NamaLengkap string `json:"nama_lengkap"`
	NIK         string `json:"nik"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/register-owner
// Bootstrap akun owner; ditolak kalau sudah ada.
func RegisterOwnerHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterOwnerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.NamaLengkap == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nama, email dan password wajib diisi")
		}

		var count int64
		db.Model(&models.Admin{}).Where("username = ?", ownerUsername).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Akun owner sudah ada")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password gagal di-hash")
		}

		owner := models.Admin{
			NamaLengkap:  body.NamaLengkap,
			NIK:          body.NIK,
			Username:     ownerUsername,
			Email:        body.Email,
			PasswordHash: string(hash),
		}
		if err := db.Create(&owner).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Akun owner gagal dibuat")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":       owner.ID,
			"username": owner.Username,
			"role":     RoleOwner,
		})
	}
}

// POST /api/auth/login
// Admin (owner / operator lapak) dan supplier login lewat endpoint yang sama.
func LoginHandler(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		username := strings.TrimSpace(strings.ToLower(body.Username))

		var admin models.Admin
		err := db.Where("LOWER(username) = ?", username).First(&admin).Error
		if err == nil {
			if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(body.Password)) != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
			}

			claims := &JWTCustomClaims{
				UserID:   admin.ID,
				Username: admin.Username,
				Role:     RoleLapak,
			}
			if admin.Username == ownerUsername {
				claims.Role = RoleOwner
			} else if lapakID := lapakIDForAdmin(db, admin.ID); lapakID != nil {
				claims.LapakID = lapakID
			}

			token, err := GenerateToken(cfg.JWTSecret, claims)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Token gagal dibuat")
			}

			return c.JSON(fiber.Map{
				"token": token,
				"user": fiber.Map{
					"id":           admin.ID,
					"nama_lengkap": admin.NamaLengkap,
					"username":     admin.Username,
					"role":         claims.Role,
					"lapak_id":     claims.LapakID,
				},
			})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Login gagal")
		}

		var supplier models.Supplier
		if err := db.Where("LOWER(username) = ?", username).First(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
		}
		if bcrypt.CompareHashAndPassword([]byte(supplier.PasswordHash), []byte(body.Password)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Username atau password salah")
		}

		sid := supplier.ID
		claims := &JWTCustomClaims{
			UserID:     supplier.ID,
			Username:   supplier.Username,
			Role:       RoleSupplier,
			SupplierID: &sid,
		}
		token, err := GenerateToken(cfg.JWTSecret, claims)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token gagal dibuat")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":            supplier.ID,
				"nama_supplier": supplier.NamaSupplier,
				"username":      supplier.Username,
				"role":          RoleSupplier,
				"supplier_id":   supplier.ID,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":     c.Locals(CtxUserIDKey),
			"username":    c.Locals(CtxUsernameKey),
			"role":        c.Locals(CtxUserRoleKey),
			"lapak_id":    c.Locals(CtxLapakIDKey),
			"supplier_id": c.Locals(CtxSupplierIDKey),
		})
	}
}

// Lapak tempat admin bertugas: penanggung jawab dulu, lalu keanggotaan.
func lapakIDForAdmin(db *gorm.DB, adminID uint) *uint {
	var lapak models.Lapak
	if err := db.Select("id").Where("user_id = ?", adminID).First(&lapak).Error; err == nil {
		return &lapak.ID
	}

	var row struct{ LapakID uint }
	err := db.Table("lapak_anggota").
		Select("lapak_id").
		Where("admin_id = ?", adminID).
		Limit(1).
		Scan(&row).Error
	if err != nil || row.LapakID == 0 {
		return nil
	}
	return &row.LapakID
}
