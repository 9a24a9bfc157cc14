package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosales-assistant-backend/internal/db"
)

func sampleTables() *Tables {
	return NewTables(
		[]ClientProfile{
			{ID: 1, ExternalUserID: 111, Name: "Аркадий", DealStatus: "VIP клиент", Budget: "500000 USD"},
			{ID: 2, ExternalUserID: 222, Name: "Maria", DealStatus: "Lead", Budget: "300k"},
		},
		[]Product{{Name: "Bentley Bentayga", Price: 250000, Description: "SUV"}},
	)
}

func TestFindClient(t *testing.T) {
	tables := sampleTables()

	got, ok := tables.FindClient(222)
	require.True(t, ok)
	assert.Equal(t, "Maria", got.Name)

	_, ok = tables.FindClient(333)
	assert.False(t, ok)
	assert.Equal(t, 2, tables.ClientCount(), "a miss must not register anything")
}

func TestFindClientReturnsCopy(t *testing.T) {
	tables := NewTables([]ClientProfile{{ExternalUserID: 1, PurchaseHistory: []Purchase{{Model: "Ghost"}}}}, nil)
	got, _ := tables.FindClient(1)
	got.PurchaseHistory[0].Model = "changed"
	again, _ := tables.FindClient(1)
	assert.Equal(t, "Ghost", again.PurchaseHistory[0].Model)
}

func TestEnsureDemoProfile(t *testing.T) {
	tables := sampleTables()

	p, created := tables.EnsureDemoProfile(42, "Ivan")
	require.True(t, created)
	assert.Equal(t, DemoClientID, p.ID)
	assert.Equal(t, "Ivan", p.Name)
	assert.Equal(t, "Bentley Continental GT (2022)", p.PreviousPurchase)
	assert.Equal(t, "400000 USD", p.Budget)

	again, created := tables.EnsureDemoProfile(42, "Other")
	assert.False(t, created)
	assert.Equal(t, "Ivan", again.Name)

	existing, created := tables.EnsureDemoProfile(111, "Ivan")
	assert.False(t, created)
	assert.Equal(t, "Аркадий", existing.Name)
	assert.Equal(t, 3, tables.ClientCount())
}

func TestEnsureDemoProfileDefaultName(t *testing.T) {
	p := DemoProfile(7, "  ")
	assert.Equal(t, "Тестовый клиент", p.Name)
}

func TestEnsureDemoProfileConcurrent(t *testing.T) {
	tables := NewTables(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			tables.EnsureDemoProfile(id%10, "user")
			tables.FindClient(id % 10)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, 10, tables.ClientCount())
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	clients := filepath.Join(dir, "clients.json")
	products := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(clients, []byte(`[
		{"client_id": 1, "telegram_user_id": 555, "name": "Аркадий", "deal_status": "VIP",
		 "previous_purchase": "Rolls-Royce Ghost (2021)", "budget": "600000 USD",
		 "purchase_history": [{"car": "Rolls-Royce Ghost", "year": 2021, "price": 350000}]}
	]`), 0o600))
	require.NoError(t, os.WriteFile(products, []byte(`{"products": [
		{"name": "Rolls-Royce Cullinan", "price_usd": 420000, "description": "SUV"}
	]}`), 0o600))

	tables, err := Load(NewFileSource(clients, products))
	require.NoError(t, err)

	c, ok := tables.FindClient(555)
	require.True(t, ok)
	assert.Equal(t, "Rolls-Royce Ghost (2021)", c.PreviousPurchase)
	require.Len(t, c.PurchaseHistory, 1)
	assert.Equal(t, int64(350000), c.PurchaseHistory[0].Price)
	assert.Equal(t, []Product{{Name: "Rolls-Royce Cullinan", Price: 420000, Description: "SUV"}}, tables.Products())
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"name": "no id"}]`), 0o600))

	_, err := NewFileSource(bad, bad).LoadClients()
	assert.ErrorIs(t, err, ErrInvalidTable)

	_, err = NewFileSource(filepath.Join(dir, "missing.json"), "").LoadClients()
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(NewFileSource(filepath.Join(dir, "missing.json"), ""))
	assert.Error(t, err)
}

func TestPostgresSource(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery("FROM clients").WillReturnRows(
		sqlmock.NewRows([]string{"client_id", "telegram_user_id", "name", "deal_status", "previous_purchase", "budget", "preferences", "notes"}).
			AddRow(1, 555, "Аркадий", "VIP", "Bentley Continental GT (2022)", "400000 USD", "Скорость", "").
			AddRow(2, 777, "Maria", "Lead", "", "300k", "", ""),
	)
	mock.ExpectQuery("FROM client_purchases").WillReturnRows(
		sqlmock.NewRows([]string{"client_id", "car", "year", "price_usd"}).
			AddRow(1, "Bentley Continental GT", 2022, 280000).
			AddRow(99, "Orphan", nil, 1),
	)
	mock.ExpectQuery("FROM products").WillReturnRows(
		sqlmock.NewRows([]string{"name", "price_usd", "description"}).
			AddRow("Bentley Flying Spur", 280000, "Sedan").
			AddRow("Rolls-Royce Phantom", 560000, "Flagship"),
	)

	tables, err := Load(NewPostgresSource(db.Wrap(sqlDB, nil)))
	require.NoError(t, err)

	c, ok := tables.FindClient(555)
	require.True(t, ok)
	require.Len(t, c.PurchaseHistory, 1)
	assert.Equal(t, 2022, c.PurchaseHistory[0].Year)

	m, ok := tables.FindClient(777)
	require.True(t, ok)
	assert.Empty(t, m.PurchaseHistory)

	products := tables.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Bentley Flying Spur", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceQueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery("FROM clients").WillReturnError(assert.AnError)
	_, err = NewPostgresSource(db.Wrap(sqlDB, nil)).LoadClients()
	assert.ErrorIs(t, err, assert.AnError)
}
