package main

import (
	"os"
	"strings"

	"lapak-backend/internal/admin"
	"lapak-backend/internal/audit"
	"lapak-backend/internal/auth"
	"lapak-backend/internal/config"
	"lapak-backend/internal/dashboard"
	"lapak-backend/internal/database"
	"lapak-backend/internal/ledger"
	"lapak-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database gagal dibuka")
	}

	reportSvc := report.NewService(db)
	ledgerSvc := ledger.NewService(db)
	auditLog := audit.NewLogger(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Terjadi kesalahan server",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(db, cfg))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Catatan harian lapak
	protected.Get("/get_data_buat_catatan/:lapak_id", report.GetCatalogHandler(reportSvc))
	protected.Get("/get_stok_awal/:lapak_id/:product_id", report.GetOpeningStockHandler(reportSvc))
	protected.Post("/submit_catatan_harian", report.SubmitDailyReportHandler(reportSvc, auditLog))
	protected.Get("/get_history_laporan/:lapak_id", report.ReportHistoryHandler(db))
	protected.Get("/get_report_details/:report_id", report.ReportDetailsHandler(db))

	// Portal supplier
	protected.Get("/get_data_supplier/:supplier_id", ledger.SupplierSummaryHandler(ledgerSvc))
	protected.Get("/get_supplier_history/:supplier_id", ledger.SupplierSalesHistoryHandler(ledgerSvc))

	// Owner
	ownerRoutes := protected.Group("")
	ownerRoutes.Use(auth.RequireRole(auth.RoleOwner))

	ownerRoutes.Post("/confirm_report/:report_id", report.ConfirmReportHandler(reportSvc, auditLog))
	ownerRoutes.Get("/get_manage_reports", report.ManageReportsHandler(db))
	ownerRoutes.Get("/get_laporan_pendapatan_harian", report.DailyRevenueHandler(db))
	ownerRoutes.Get("/get_laporan_biaya_harian", report.DailyCostHandler(db))

	// Pembayaran supplier
	ownerRoutes.Post("/submit_pembayaran", ledger.SubmitPaymentHandler(ledgerSvc, auditLog))
	ownerRoutes.Get("/get_pembayaran_data", ledger.GetBalancesHandler(ledgerSvc))
	ownerRoutes.Get("/get_all_payment_history", ledger.PaymentHistoryHandler(ledgerSvc))

	// Master data
	ownerRoutes.Get("/get_admins", admin.ListAdminsHandler(db))
	ownerRoutes.Post("/add_admin", admin.CreateAdminHandler(db))
	ownerRoutes.Put("/update_admin/:admin_id", admin.UpdateAdminHandler(db))
	ownerRoutes.Delete("/delete_admin/:admin_id", admin.DeleteAdminHandler(db))

	ownerRoutes.Get("/get_lapaks", admin.ListLapaksHandler(db))
	ownerRoutes.Post("/add_lapak", admin.CreateLapakHandler(db))
	ownerRoutes.Put("/update_lapak/:lapak_id", admin.UpdateLapakHandler(db))
	ownerRoutes.Delete("/delete_lapak/:lapak_id", admin.DeleteLapakHandler(db))

	ownerRoutes.Get("/get_suppliers", admin.ListSuppliersHandler(db))
	ownerRoutes.Get("/get_next_supplier_reg_number", admin.NextRegNumberHandler(db))
	ownerRoutes.Post("/add_supplier", admin.CreateSupplierHandler(db))
	ownerRoutes.Put("/update_supplier/:supplier_id", admin.UpdateSupplierHandler(db))
	ownerRoutes.Delete("/delete_supplier/:supplier_id", admin.DeleteSupplierHandler(db))

	ownerRoutes.Get("/get_products", admin.ListProductsHandler(db))
	ownerRoutes.Post("/add_product", admin.CreateProductHandler(db))
	ownerRoutes.Put("/update_product/:product_id", admin.UpdateProductHandler(db))
	ownerRoutes.Delete("/delete_product/:product_id", admin.DeleteProductHandler(db))

	// Dashboard
	ownerRoutes.Get("/get_data_owner", admin.OwnerDataHandler(db))
	ownerRoutes.Get("/get_chart_data", dashboard.ChartDataHandler(db))

	// Audit logs
	ownerRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Info().Str("port", cfg.HTTPPort).Msg("server berjalan")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server berhenti")
	}
}
