package sales

import (
	"strings"

	"autosales-assistant-backend/internal/catalog"
)

// MaxRelevant caps how many catalog entries are offered per answer.
const MaxRelevant = 3

// GenericTerms make a query relevant to every catalog entry. Brand names are
// listed in both languages alongside generic car/luxury words.
var GenericTerms = []string{
	"bentley", "rolls-royce", "роллс", "бентли",
	"автомобиль", "машина", "car", "luxury",
}

// RelevantProducts returns up to MaxRelevant products, in catalog order, whose
// name or one of GenericTerms appears in the query and whose price fits the
// budget. There is no similarity ranking: order and the cap decide.
func RelevantProducts(products []catalog.Product, query string, budget Budget) []catalog.Product {
	q := strings.ToLower(query)
	generic := containsAny(q, GenericTerms)

	var out []catalog.Product
	for _, p := range products {
		if !generic && !strings.Contains(q, strings.ToLower(p.Name)) {
			continue
		}
		if !budget.Allows(p.Price) {
			continue
		}
		out = append(out, p)
		if len(out) == MaxRelevant {
			break
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
