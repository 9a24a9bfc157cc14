package catalog

import (
	"database/sql"
	"fmt"

	"autosales-assistant-backend/internal/db"
)

// PostgresSource loads the client and product tables from PostgreSQL.
type PostgresSource struct {
	db *db.DB
}

// NewPostgresSource creates a source over an open database
func NewPostgresSource(database *db.DB) *PostgresSource {
	return &PostgresSource{db: database}
}

// LoadClients reads every client row plus its purchase history, in id order.
func (ps *PostgresSource) LoadClients() ([]ClientProfile, error) {
	query := `
		SELECT client_id, telegram_user_id, name, deal_status,
			COALESCE(previous_purchase, ''), budget,
			COALESCE(preferences, ''), COALESCE(notes, '')
		FROM clients
		ORDER BY client_id
	`
	rows, err := ps.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []ClientProfile
	index := make(map[int64]int)
	for rows.Next() {
		var c ClientProfile
		if err := rows.Scan(
			&c.ID,
			&c.ExternalUserID,
			&c.Name,
			&c.DealStatus,
			&c.PreviousPurchase,
			&c.Budget,
			&c.Preferences,
			&c.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		index[c.ID] = len(clients)
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}

	if err := ps.attachPurchases(clients, index); err != nil {
		return nil, err
	}
	return clients, nil
}

func (ps *PostgresSource) attachPurchases(clients []ClientProfile, index map[int64]int) error {
	query := `
		SELECT client_id, car, year, price_usd
		FROM client_purchases
		ORDER BY client_id, year, id
	`
	rows, err := ps.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var clientID int64
		var p Purchase
		var year sql.NullInt64
		if err := rows.Scan(&clientID, &p.Model, &year, &p.Price); err != nil {
			return fmt.Errorf("failed to scan purchase: %w", err)
		}
		p.Year = int(year.Int64)
		i, ok := index[clientID]
		if !ok {
			continue // orphaned row
		}
		clients[i].PurchaseHistory = append(clients[i].PurchaseHistory, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read purchases: %w", err)
	}
	return nil
}

// LoadProducts reads the catalog in its curated display order.
func (ps *PostgresSource) LoadProducts() ([]Product, error) {
	query := `
		SELECT name, price_usd, description
		FROM products
		ORDER BY position, id
	`
	rows, err := ps.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
