package sales

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/locale"
)

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in      string
		amount  int64
		known   bool
		ceiling int64
	}{
		{in: "400000 USD", amount: 400000, known: true, ceiling: 480000},
		{in: "300k", amount: 300000, known: true, ceiling: 360000},
		{in: "$250K budget", amount: 250000, known: true, ceiling: 300000},
		{in: "от 150000 до 200000", amount: 150000, known: true, ceiling: 180000},
		{in: "unspecified", known: false},
		{in: "Не указан", known: false},
		{in: "", known: false},
		{in: "2000000000000000000 USD", known: false},
		{in: "9999999999999999k", known: false},
		{in: "99999999999999999999", known: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b := ParseBudget(tt.in)
			assert.Equal(t, tt.known, b.Known)
			assert.Equal(t, tt.amount, b.Amount)
			ceiling, ok := b.Ceiling()
			assert.Equal(t, tt.known, ok)
			assert.Equal(t, tt.ceiling, ceiling)
		})
	}
}

func TestBudgetAllows(t *testing.T) {
	b := ParseBudget("100000")
	assert.True(t, b.Allows(120000))
	assert.False(t, b.Allows(120001))
	assert.True(t, Budget{}.Allows(10_000_000))

	huge := ParseBudget("9999999999999999k")
	assert.True(t, huge.Allows(280000))
	assert.Len(t, RelevantProducts(testCatalog, "машина", ParseBudget("2000000000000000000 USD")), 3)
}

var testCatalog = []catalog.Product{
	{Name: "Bentley Continental GT Speed", Price: 330000},
	{Name: "Bentley Flying Spur", Price: 280000},
	{Name: "Bentley Bentayga EWB", Price: 260000},
	{Name: "Rolls-Royce Ghost", Price: 375000},
	{Name: "Rolls-Royce Cullinan", Price: 420000},
	{Name: "Rolls-Royce Phantom", Price: 560000},
}

func names(ps []catalog.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestRelevantProductsGenericTermMatchesCatalogOrder(t *testing.T) {
	got := RelevantProducts(testCatalog, "Хочу Bentley", Budget{})
	assert.Equal(t, []string{"Bentley Continental GT Speed", "Bentley Flying Spur", "Bentley Bentayga EWB"}, names(got))
}

func TestRelevantProductsGenericTermIgnoresBrand(t *testing.T) {
	// A Rolls-Royce query still surfaces Bentleys first: catalog order decides.
	got := RelevantProducts(testCatalog, "Interested in Rolls-Royce", Budget{})
	assert.Equal(t, "Bentley Continental GT Speed", got[0].Name)
}

func TestRelevantProductsByName(t *testing.T) {
	got := RelevantProducts(testCatalog, "what about the rolls-royce phantom", ParseBudget("1000000"))
	// "rolls-royce" is generic, so the first three within budget come back.
	assert.Len(t, got, 3)

	got = RelevantProducts(testCatalog, "tell me about Bentley Flying Spur", ParseBudget("240000"))
	assert.Equal(t, []string{"Bentley Flying Spur", "Bentley Bentayga EWB"}, names(got))
}

func TestRelevantProductsNameOnlyMatch(t *testing.T) {
	products := []catalog.Product{{Name: "Mulliner Edition", Price: 10}, {Name: "Other", Price: 10}}
	got := RelevantProducts(products, "Show me the MULLINER edition", Budget{})
	assert.Equal(t, []string{"Mulliner Edition"}, names(got))

	assert.Empty(t, RelevantProducts(products, "hello there", Budget{}))
}

func TestRelevantProductsRespectsCeilingAndCap(t *testing.T) {
	budgets := []string{"400000 USD", "300k", "250000", "unspecified", "1"}
	for _, raw := range budgets {
		b := ParseBudget(raw)
		got := RelevantProducts(testCatalog, "luxury car", b)
		assert.LessOrEqual(t, len(got), MaxRelevant)
		if ceiling, ok := b.Ceiling(); ok {
			for _, p := range got {
				assert.LessOrEqual(t, p.Price, ceiling, raw)
			}
		}
	}
}

func TestRelevantProductsBudgetSkipsExpensive(t *testing.T) {
	got := RelevantProducts(testCatalog, "машина", ParseBudget("235000"))
	assert.Equal(t, []string{"Bentley Flying Spur", "Bentley Bentayga EWB"}, names(got))
}

func TestUpsellNoPreviousPurchase(t *testing.T) {
	e := NewUpsellEngine(DefaultUpsellRules)
	_, ok := e.Recommend(catalog.ClientProfile{Name: "new"}, locale.RU)
	assert.False(t, ok)
}

func TestUpsellFirstRuleWins(t *testing.T) {
	e := NewUpsellEngine(DefaultUpsellRules)
	rec, ok := e.Recommend(catalog.ClientProfile{PreviousPurchase: "Bentley Continental GT and a Rolls-Royce Ghost"}, locale.RU)
	require.True(t, ok)
	assert.Equal(t, "Rolls-Royce Phantom", rec.Product)
	assert.Equal(t, "Следующий уровень роскоши после Bentley Continental", rec.Reason)
}

func TestUpsellSecondRule(t *testing.T) {
	e := NewUpsellEngine(DefaultUpsellRules)
	rec, ok := e.Recommend(catalog.ClientProfile{PreviousPurchase: "Rolls-Royce GHOST (2021)"}, locale.EN)
	require.True(t, ok)
	assert.Equal(t, "Rolls-Royce Cullinan", rec.Product)
	assert.Equal(t, "SUV versatility with the same level of luxury", rec.Reason)
}

func TestUpsellNoMatch(t *testing.T) {
	e := NewUpsellEngine(DefaultUpsellRules)
	_, ok := e.Recommend(catalog.ClientProfile{PreviousPurchase: "Bentley Bentayga"}, locale.EN)
	assert.False(t, ok)
}

func TestUpsellLongRuleTable(t *testing.T) {
	var rules []UpsellRule
	for i := 0; i < 50; i++ {
		rules = append(rules, UpsellRule{Match: []string{"never"}, Product: "x"})
	}
	rules = append(rules, UpsellRule{Match: []string{"Maybach"}, Product: "Rolls-Royce Spectre", Reason: map[locale.Locale]string{locale.EN: "electric"}})
	e := NewUpsellEngine(rules)
	rec, ok := e.Recommend(catalog.ClientProfile{PreviousPurchase: "maybach s680"}, locale.RU)
	require.True(t, ok)
	assert.Equal(t, "Rolls-Royce Spectre", rec.Product)
	assert.Equal(t, "electric", rec.Reason, "falls back to any available locale")
}

func TestLoadUpsellRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - match: [cullinan]
    product: Rolls-Royce Phantom
    reason:
      ru: Флагман после SUV
      en: Flagship after the SUV
`), 0o600))

	rules, err := LoadUpsellRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	rec, ok := NewUpsellEngine(rules).Recommend(catalog.ClientProfile{PreviousPurchase: "Rolls-Royce Cullinan"}, locale.RU)
	require.True(t, ok)
	assert.Equal(t, "Флагман после SUV", rec.Reason)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("rules: []\n"), 0o600))
	_, err = LoadUpsellRules(empty)
	assert.Error(t, err)
}
