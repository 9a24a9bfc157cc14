package catalog

// Purchase is one past car purchase from a client's history.
type Purchase struct {
	Model string `json:"car"`
	Year  int    `json:"year"`
	Price int64  `json:"price"`
}

// ClientProfile is a CRM record used to personalize sales answers.
type ClientProfile struct {
	ID               int64      `json:"client_id"`
	ExternalUserID   int64      `json:"telegram_user_id"`
	Name             string     `json:"name"`
	DealStatus       string     `json:"deal_status"`
	PreviousPurchase string     `json:"previous_purchase,omitempty"`
	Budget           string     `json:"budget"`
	Preferences      string     `json:"preferences,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	PurchaseHistory  []Purchase `json:"purchase_history,omitempty"`
}

// Product is a catalog entry. Price is in whole US dollars.
type Product struct {
	Name        string `json:"name"`
	Price       int64  `json:"price_usd"`
	Description string `json:"description"`
}

// Source loads the collaborator-owned tables at startup.
type Source interface {
	LoadClients() ([]ClientProfile, error)
	LoadProducts() ([]Product, error)
}
