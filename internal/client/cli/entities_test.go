package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villaresmetals/console/internal/client/models"
)

func TestApplyOrder(t *testing.T) {
	current := models.Order{
		ID:          7,
		Description: "old",
		Customer:    &models.Customer{ID: 2, Name: "ACME"},
		Production:  models.StatusQueued,
	}

	got, err := applyOrder(current, map[string]string{
		"description": "Corte",
		"Delivery":    "2024-06-01",
		"value":       "150.50",
		"paid":        "true",
		"status":      "PRONTO",
		"items":       "1:3, 4:1",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, got.ID)
	assert.Equal(t, "Corte", got.Description)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got.DeliveryDate)
	assert.True(t, got.Value.Equal(decimal.RequireFromString("150.5")))
	assert.True(t, got.Paid)
	assert.Equal(t, models.StatusReady, got.Production)
	assert.Equal(t, 2, got.Customer.ID, "untouched fields are kept")
	assert.Equal(t, []models.OrderItem{
		{Product: models.Product{ID: 1}, Quantity: 3},
		{Product: models.Product{ID: 4}, Quantity: 1},
	}, got.Items)

	cleared, err := applyOrder(got, map[string]string{"customer": "0", "delivery": ""})
	require.NoError(t, err)
	assert.Nil(t, cleared.Customer)
	assert.True(t, cleared.DeliveryDate.IsZero())
}

func TestApplyOrder_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown field": {"colour": "red"},
		"bad date":      {"delivery": "01/06/2024"},
		"bad value":     {"value": "ten"},
		"bad paid":      {"paid": "maybe"},
		"bad status":    {"status": "DONE"},
		"bad item":      {"items": "1x3"},
		"zero quantity": {"items": "1:0"},
		"bad customer":  {"customer": "acme"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := applyOrder(models.Order{}, fields)
			require.Error(t, err)
		})
	}
}

func TestCustomerApply(t *testing.T) {
	c, err := customerEntity.apply(models.Customer{ID: 3, Phone: "555"}, map[string]string{
		"name": "ACME", "cnpj": "11.222", "email": "a@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Customer{ID: 3, Name: "ACME", CNPJ: "11.222", Phone: "555", Email: "a@acme.test"}, c)

	_, err = productEntity.apply(models.Product{}, map[string]string{"weight": "1"})
	require.Error(t, err)
}

func TestLookupEntity(t *testing.T) {
	for _, name := range []string{"customers", "customer", "orders", "order", "employees", "products"} {
		_, ok := lookupEntity(name)
		assert.True(t, ok, name)
	}
	_, ok := lookupEntity("invoices")
	assert.False(t, ok)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, []string{"ID", "NAME"}, [][]string{{"1", "Chapa"}, {"22", "Barra"}}))
	assert.Equal(t, "ID  NAME\n--  ----\n1   Chapa\n22  Barra\n", buf.String())

	buf.Reset()
	require.NoError(t, printTable(&buf, []string{"ID"}, nil))
	assert.Equal(t, "No records.\n", buf.String())
}

func TestOrderRow(t *testing.T) {
	row := orderEntity.row(models.Order{
		ID: 1, Description: "Corte", Value: decimal.NewFromInt(150), Paid: true,
		Production: models.StatusInProduction, Customer: &models.Customer{Name: "ACME"},
		DeliveryDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Items:        []models.OrderItem{{Quantity: 1}},
	})
	assert.Equal(t, []string{"1", "ACME", "Corte", "2024-06-01", "150.00", "true", "IN_PRODUCTION", "1"}, row)
}
