package admin

import (
	"errors"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductRequest struct {
	NamaProduk string   `json:"nama_produk"`
	SupplierID *uint    `json:"supplier_id"`
	HargaBeli  *float64 `json:"harga_beli"`
	HargaJual  *float64 `json:"harga_jual"`
	LapakIDs   []uint   `json:"lapak_ids"`
}

type ProductResponse struct {
	ID         uint    `json:"id"`
	NamaProduk string  `json:"nama_produk"`
	SupplierID *uint   `json:"supplier_id"`
	Supplier   string  `json:"supplier"`
	HargaBeli  float64 `json:"harga_beli"`
	HargaJual  float64 `json:"harga_jual"`
	IsManual   bool    `json:"is_manual"`
}

func toProductResponse(p models.Product) ProductResponse {
	resp := ProductResponse{
		ID:         p.ID,
		NamaProduk: p.NamaProduk,
		SupplierID: p.SupplierID,
		HargaBeli:  p.HargaBeli,
		HargaJual:  p.HargaJual,
		IsManual:   p.IsManual,
	}
	if p.Supplier != nil {
		resp.Supplier = p.Supplier.NamaSupplier
	}
	return resp
}

// GET /api/get_products?supplier_id=...
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Preload("Supplier").Order("nama_produk")
		if sid := c.QueryInt("supplier_id", 0); sid > 0 {
			q = q.Where("supplier_id = ?", sid)
		}

		var products []models.Product
		if err := q.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Daftar produk gagal diambil")
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		return c.JSON(fiber.Map{"success": true, "products": resp})
	}
}

// POST /api/add_product
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}
		if body.NamaProduk == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nama produk wajib diisi")
		}

		product := models.Product{
			NamaProduk: body.NamaProduk,
			SupplierID: body.SupplierID,
			HargaBeli:  models.DefaultHargaBeli,
			HargaJual:  models.DefaultHargaJual,
		}
		if body.HargaBeli != nil {
			product.HargaBeli = *body.HargaBeli
		}
		if body.HargaJual != nil {
			product.HargaJual = *body.HargaJual
		}
		if product.HargaBeli < 0 || product.HargaJual < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Harga tidak boleh negatif")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			if len(body.LapakIDs) > 0 {
				var lapaks []models.Lapak
				if err := tx.Find(&lapaks, body.LapakIDs).Error; err != nil {
					return err
				}
				return tx.Model(&product).Association("Lapaks").Replace(lapaks)
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Produk gagal dibuat")
		}

		db.Preload("Supplier").First(&product, product.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": toProductResponse(product)})
	}
}

// PUT /api/update_product/:product_id
// Perubahan harga hanya berlaku ke depan; rincian laporan lama menyimpan
// snapshot harga sendiri dan tidak ikut berubah.
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("product_id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id tidak valid")
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Body request tidak valid")
		}

		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Produk tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Produk gagal diambil")
		}

		if body.NamaProduk != "" {
			product.NamaProduk = body.NamaProduk
		}
		if body.SupplierID != nil {
			product.SupplierID = body.SupplierID
			product.IsManual = false
		}
		if body.HargaBeli != nil {
			if *body.HargaBeli < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Harga tidak boleh negatif")
			}
			product.HargaBeli = *body.HargaBeli
		}
		if body.HargaJual != nil {
			if *body.HargaJual < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Harga tidak boleh negatif")
			}
			product.HargaJual = *body.HargaJual
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
			if body.LapakIDs != nil {
				var lapaks []models.Lapak
				if len(body.LapakIDs) > 0 {
					if err := tx.Find(&lapaks, body.LapakIDs).Error; err != nil {
						return err
					}
				}
				return tx.Model(&product).Association("Lapaks").Replace(lapaks)
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Produk gagal diperbarui")
		}

		db.Preload("Supplier").First(&product, product.ID)
		return c.JSON(fiber.Map{"success": true, "product": toProductResponse(product)})
	}
}

// DELETE /api/delete_product/:product_id
// Ditolak kalau produk sudah muncul di rincian laporan.
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("product_id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id tidak valid")
		}

		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Produk tidak ditemukan")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Produk gagal diambil")
		}

		var used int64
		if err := db.Model(&models.ReportItem{}).Where("product_id = ?", productID).Count(&used).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Pengecekan laporan gagal")
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusConflict, "Produk sudah masuk laporan, tidak bisa dihapus")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM product_lapak WHERE product_id = ?", productID).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", productID).Delete(&models.DailyStock{}).Error; err != nil {
				return err
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Produk gagal dihapus")
		}

		return c.JSON(fiber.Map{"success": true, "message": "Produk berhasil dihapus."})
	}
}
