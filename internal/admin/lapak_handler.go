package admin

import (
	"errors"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LapakRequest struct {
	Lokasi     string `json:"lokasi"`
	UserID     uint   `json:"user_id"` // penanggung jawab
	AnggotaIDs []uint `json:"anggota_ids"`
	ProductIDs []uint `json:"product_ids"` // alokasi produk ke lapak
}

type LapakResponse struct {
	ID              uint            `json:"id"`
	Lokasi          string          `json:"lokasi"`
	PenanggungJawab AdminResponse   `json:"penanggung_jawab"`
	Anggota         []AdminResponse `json:"anggota"`
	JumlahProduk    int             `json:"jumlah_produk"`
}

func toLapakResponse(l models.Lapak) LapakResponse {
	anggota := make([]AdminResponse, 0, len(l.Anggota))
	for _, a := range l.Anggota {
		anggota = append(anggota, toAdminResponse(a))
	}
	return LapakResponse{
		ID:              l.ID,
		Lokasi:          l.Lokasi,
		PenanggungJawab: toAdminResponse(l.PenanggungJawab),
		Anggota:         anggota,
		JumlahProduk:    len(l.Products),
	}
}

// GET /api/get_lapaks
func ListLapaksHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var lapaks []models.Lapak
		err := db.Preload("PenanggungJawab").Preload("Anggota").Preload("Products").
			Order("lokasi").Find(&lapaks).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Daftar lapak gagal diambil")
		}

		resp := make([]LapakResponse, 0, len(lapaks))
		for _, l := range lapaks {
			resp = append(resp, toLapakResponse(l))
		}
		return c.JSON(fiber.Map{"success": true, "lapaks": resp})
	}
}

// POST /api/add_lapak
func CreateLapakHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LapakRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}
		if body.Lokasi == "" || body.UserID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Lokasi dan penanggung jawab wajib diisi")
		}

		var pj models.Admin
		if err := db.First(&pj, body.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Penanggung jawab tidak ditemukan")
		}

		lapak := models.Lapak{Lokasi: body.Lokasi, UserID: body.UserID}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&lapak).Error; err != nil {
				return err
			}
			if len(body.AnggotaIDs) > 0 {
				var anggota []models.Admin
				if err := tx.Find(&anggota, body.AnggotaIDs).Error; err != nil {
					return err
				}
				if err := tx.Model(&lapak).Association("Anggota").Replace(anggota); err != nil {
					return err
				}
			}
			if len(body.ProductIDs) > 0 {
				var products []models.Product
				if err := tx.Find(&products, body.ProductIDs).Error; err != nil {
					return err
				}
				if err := tx.Model(&lapak).Association("Products").Replace(products); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Lokasi lapak sudah terdaftar")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Lapak gagal dibuat")
		}

		db.Preload("PenanggungJawab").Preload("Anggota").Preload("Products").First(&lapak, lapak.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "lapak": toLapakResponse(lapak)})
	}
}

// PUT /api/update_lapak/:lapak_id
func UpdateLapakHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lapakID, err := c.ParamsInt("lapak_id")
		if err != nil || lapakID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lapak_id tidak valid")
		}

		var body LapakRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		var lapak models.Lapak
		if err := db.First(&lapak, lapakID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Lapak tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Lapak gagal diambil")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if body.Lokasi != "" {
				lapak.Lokasi = body.Lokasi
			}
			if body.UserID != 0 {
				var pj models.Admin
				if err := tx.First(&pj, body.UserID).Error; err != nil {
					return err
				}
				lapak.UserID = body.UserID
			}
			if err := tx.Save(&lapak).Error; err != nil {
				return err
			}
			if body.AnggotaIDs != nil {
				var anggota []models.Admin
				if len(body.AnggotaIDs) > 0 {
					if err := tx.Find(&anggota, body.AnggotaIDs).Error; err != nil {
						return err
					}
				}
				if err := tx.Model(&lapak).Association("Anggota").Replace(anggota); err != nil {
					return err
				}
			}
			if body.ProductIDs != nil {
				var products []models.Product
				if len(body.ProductIDs) > 0 {
					if err := tx.Find(&products, body.ProductIDs).Error; err != nil {
						return err
					}
				}
				if err := tx.Model(&lapak).Association("Products").Replace(products); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Lokasi lapak sudah terdaftar")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Lapak gagal diperbarui")
		}

		db.Preload("PenanggungJawab").Preload("Anggota").Preload("Products").First(&lapak, lapak.ID)
		return c.JSON(fiber.Map{"success": true, "lapak": toLapakResponse(lapak)})
	}
}

// DELETE /api/delete_lapak/:lapak_id
// Ditolak selama masih ada laporan pending. Laporan terkonfirmasi ikut
// terhapus beserta rinciannya; saldo supplier yang sudah terkredit tidak
// disentuh karena konfirmasi bersifat final.
func DeleteLapakHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lapakID, err := c.ParamsInt("lapak_id")
		if err != nil || lapakID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "lapak_id tidak valid")
		}

		var lapak models.Lapak
		if err := db.First(&lapak, lapakID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Lapak tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Lapak gagal diambil")
		}

		var pending int64
		err = db.Model(&models.DailyReport{}).
			Where("lapak_id = ? AND status = ?", lapakID, models.ReportPending).
			Count(&pending).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Pengecekan laporan gagal")
		}
		if pending > 0 {
			return fiber.NewError(fiber.StatusConflict, "Masih ada laporan pending, konfirmasi atau hapus dulu")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var reportIDs []uint
			if err := tx.Model(&models.DailyReport{}).
				Where("lapak_id = ?", lapakID).
				Pluck("id", &reportIDs).Error; err != nil {
				return err
			}
			if len(reportIDs) > 0 {
				if err := tx.Where("laporan_id IN ?", reportIDs).Delete(&models.ReportItem{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", reportIDs).Delete(&models.DailyReport{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("lapak_id = ?", lapakID).Delete(&models.DailyStock{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM lapak_anggota WHERE lapak_id = ?", lapakID).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM product_lapak WHERE lapak_id = ?", lapakID).Error; err != nil {
				return err
			}
			return tx.Delete(&lapak).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Lapak gagal dihapus")
		}

		return c.JSON(fiber.Map{"success": true, "message": "Lapak berhasil dihapus."})
	}
}
