package catalog

import (
	"fmt"
	"strings"
	"sync"
)

// DemoClientID marks profiles created by EnsureDemoProfile.
const DemoClientID int64 = 999

// Tables holds the client and product tables for the process lifetime.
// Products are immutable after construction; the client table only grows
// through EnsureDemoProfile.
type Tables struct {
	mu       sync.RWMutex
	clients  []ClientProfile
	products []Product
}

func NewTables(clients []ClientProfile, products []Product) *Tables {
	return &Tables{
		clients:  append([]ClientProfile(nil), clients...),
		products: append([]Product(nil), products...),
	}
}

// Load builds tables from a Source.
func Load(src Source) (*Tables, error) {
	clients, err := src.LoadClients()
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	products, err := src.LoadProducts()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return NewTables(clients, products), nil
}

// FindClient scans the client table for externalUserID. A miss is reported
// through ok, never as an error.
func (t *Tables) FindClient(externalUserID int64) (ClientProfile, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findLocked(externalUserID)
}

func (t *Tables) findLocked(externalUserID int64) (ClientProfile, bool) {
	for _, c := range t.clients {
		if c.ExternalUserID == externalUserID {
			return copyProfile(c), true
		}
	}
	return ClientProfile{}, false
}

// EnsureDemoProfile returns the profile for externalUserID, registering a
// demonstration VIP record first when none exists. created reports whether
// the table was mutated.
func (t *Tables) EnsureDemoProfile(externalUserID int64, firstName string) (p ClientProfile, created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.findLocked(externalUserID); ok {
		return existing, false
	}
	demo := DemoProfile(externalUserID, firstName)
	t.clients = append(t.clients, demo)
	return copyProfile(demo), true
}

// DemoProfile is the record EnsureDemoProfile registers.
func DemoProfile(externalUserID int64, firstName string) ClientProfile {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "Тестовый клиент"
	}
	return ClientProfile{
		ID:               DemoClientID,
		ExternalUserID:   externalUserID,
		Name:             name,
		DealStatus:       "VIP клиент",
		PreviousPurchase: "Bentley Continental GT (2022)",
		Budget:           "400000 USD",
		Preferences:      "Скорость, роскошь, новые технологии",
		Notes:            "Интересуется апгрейдом автомобиля",
		PurchaseHistory: []Purchase{
			{Model: "Bentley Continental GT", Year: 2022, Price: 280000},
		},
	}
}

// Products returns the catalog in its stored order.
func (t *Tables) Products() []Product {
	return append([]Product(nil), t.products...)
}

// ClientCount is used by startup logging.
func (t *Tables) ClientCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.clients)
}

func copyProfile(p ClientProfile) ClientProfile {
	p.PurchaseHistory = append([]Purchase(nil), p.PurchaseHistory...)
	return p
}
