package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidTable is returned when a table file parses but holds unusable rows.
var ErrInvalidTable = errors.New("invalid table")

// FileSource reads the CRM export and the product knowledge base from JSON files.
type FileSource struct {
	clientsPath  string
	productsPath string
}

func NewFileSource(clientsPath, productsPath string) *FileSource {
	return &FileSource{clientsPath: clientsPath, productsPath: productsPath}
}

// LoadClients expects a JSON array of client records.
func (f *FileSource) LoadClients() ([]ClientProfile, error) {
	b, err := os.ReadFile(f.clientsPath)
	if err != nil {
		return nil, err
	}
	var clients []ClientProfile
	if err := json.Unmarshal(b, &clients); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.clientsPath, err)
	}
	for i, c := range clients {
		if c.ExternalUserID == 0 {
			return nil, fmt.Errorf("%w: client #%d in %s has no telegram_user_id", ErrInvalidTable, i, f.clientsPath)
		}
	}
	return clients, nil
}

type productsFile struct {
	Products []Product `json:"products"`
}

// LoadProducts expects an object with a "products" array.
func (f *FileSource) LoadProducts() ([]Product, error) {
	b, err := os.ReadFile(f.productsPath)
	if err != nil {
		return nil, err
	}
	var kb productsFile
	if err := json.Unmarshal(b, &kb); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.productsPath, err)
	}
	for i, p := range kb.Products {
		if p.Name == "" || p.Price < 0 {
			return nil, fmt.Errorf("%w: product #%d in %s", ErrInvalidTable, i, f.productsPath)
		}
	}
	return kb.Products, nil
}
