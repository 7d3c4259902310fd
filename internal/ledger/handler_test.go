package ledger

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"lapak-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestPaymentHistoryMetodeSemuaMeansNoFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	supplier := seedSupplier(t, db, models.PaymentCash, 500000)

	_, err := svc.RecordPayment(supplier.ID, 10000, models.PaymentCash, time.Now())
	require.NoError(t, err)
	_, err = svc.RecordPayment(supplier.ID, 20000, models.PaymentTransfer, time.Now())
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/api/get_all_payment_history", PaymentHistoryHandler(svc))

	fetch := func(url string) []PaymentHistoryEntry {
		t.Helper()
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var out struct {
			Payments []PaymentHistoryEntry `json:"payments"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		return out.Payments
	}

	// "semua" dari dropdown berarti tanpa filter metode
	require.Len(t, fetch("/api/get_all_payment_history?metode=semua"), 2)
	require.Len(t, fetch("/api/get_all_payment_history?metode=transfer"), 1)
	require.Len(t, fetch("/api/get_all_payment_history"), 2)
}
