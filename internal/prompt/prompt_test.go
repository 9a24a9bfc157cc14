package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/locale"
	"autosales-assistant-backend/internal/sales"
)

func mustDefault(t *testing.T) *Library {
	t.Helper()
	lib, err := Default()
	require.NoError(t, err)
	return lib
}

func TestFormatUSD(t *testing.T) {
	cases := map[int64]string{
		0:       "$0",
		999:     "$999",
		1000:    "$1,000",
		280000:  "$280,000",
		1234567: "$1,234,567",
		-4500:   "-$4,500",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatUSD(in), "input %d", in)
	}
}

func TestSalesPromptRussian(t *testing.T) {
	lib := mustDefault(t)
	profile := catalog.DemoProfile(42, "Аркадий")
	p, err := lib.Sales(SalesContext{
		Profile: profile,
		Locale:  locale.RU,
		Products: []catalog.Product{
			{Name: "Bentley Flying Spur", Price: 280000, Description: "Представительский седан"},
		},
		Upsell: &sales.Recommendation{Product: "Rolls-Royce Phantom", Reason: "Следующий уровень роскоши после Bentley Continental"},
		Query:  "Хочу Bentley",
	})
	require.NoError(t, err)

	assert.Equal(t, "Хочу Bentley", p.User)
	assert.Contains(t, p.System, "Аркадий")
	assert.Contains(t, p.System, "Bentley Continental GT (2022)")
	assert.Contains(t, p.System, "• Bentley Flying Spur: $280,000 - Представительский седан")
	assert.Contains(t, p.System, "• Rolls-Royce Phantom: Следующий уровень роскоши после Bentley Continental")
	assert.Contains(t, p.System, "1. ОБЯЗАТЕЛЬНО обратись к клиенту по имени")
	assert.Contains(t, p.System, "7. Закончи призывом к действию")
	assert.NotContains(t, p.System, "RESPONSE RULES")
	assert.Equal(t, 400, p.Params.MaxTokens)
	assert.InDelta(t, 0.7, p.Params.Temperature, 0.0001)
	assert.False(t, p.Params.JSON)
}

func TestSalesPromptOmitsEmptySections(t *testing.T) {
	lib := mustDefault(t)
	p, err := lib.Sales(SalesContext{
		Profile: catalog.ClientProfile{Name: "Elena"},
		Locale:  locale.EN,
		Query:   "hello",
	})
	require.NoError(t, err)
	assert.NotContains(t, p.System, "AVAILABLE CARS")
	assert.NotContains(t, p.System, "UPSELL RECOMMENDATIONS")
	assert.Contains(t, p.System, "Previous purchase: None")
	assert.Contains(t, p.System, "Budget: Not specified")
	assert.Contains(t, p.System, "RESPONSE RULES:")
}

func TestPlaceholder(t *testing.T) {
	lib := mustDefault(t)
	ru := lib.Placeholder(locale.RU)
	assert.Equal(t, "Новый клиент", ru.Name)
	assert.Equal(t, "Новый контакт", ru.DealStatus)
	assert.Empty(t, ru.PreviousPurchase)

	en := lib.Placeholder(locale.EN)
	assert.Equal(t, "New client", en.Name)
	assert.Equal(t, "Unspecified", en.Budget)
}

func TestAnalysisPrompt(t *testing.T) {
	lib := mustDefault(t)
	p := lib.Analysis(locale.EN, "Manager: hi\nClient: hello")
	assert.Contains(t, p.System, `"call_quality": "good" | "bad"`)
	assert.Equal(t, "Analyze this call:\n\nManager: hi\nClient: hello", p.User)
	assert.True(t, p.Params.JSON)

	ru := lib.Analysis(locale.RU, "текст")
	assert.True(t, strings.HasPrefix(ru.User, "Проанализируй этот звонок:"))
}

func TestScriptPrompt(t *testing.T) {
	lib := mustDefault(t)
	p, err := lib.Script(locale.EN, []string{"call one", "call two"})
	require.NoError(t, err)
	assert.Contains(t, p.System, "call one\n\n---\n\ncall two")
	assert.Equal(t, "Create a script template based on the provided examples.", p.User)
	assert.Zero(t, p.Params.MaxTokens)

	_, err = lib.Script(locale.RU, nil)
	assert.Error(t, err)
}

func TestParseRejectsMissingLocale(t *testing.T) {
	_, err := Parse([]byte("sales_template: hi\nlocales:\n  en:\n    persona: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ru"`)
}

func TestParseRejectsEmptySalesTemplate(t *testing.T) {
	override := strings.Replace(string(defaultSpec), "sales_template:", "unused_template:", 1)
	_, err := Parse([]byte(override + "\nsales_template: \"  \"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sales_template")
}

func TestParseRejectsBrokenTemplate(t *testing.T) {
	_, err := Parse([]byte("sales_template: \"{{.T.Persona\"\n"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, defaultSpec, 0o644))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Новый клиент", lib.Placeholder(locale.RU).Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	lib, err = Load("")
	require.NoError(t, err)
	assert.NotNil(t, lib)
}
