package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/locale"
	"autosales-assistant-backend/internal/sales"
)

//go:embed prompts.yaml
var defaultSpec []byte

// ExampleSeparator joins example transcripts inside the script prompt.
const ExampleSeparator = "\n\n---\n\n"

// Spec is the YAML document behind a Library.
type Spec struct {
	Generation struct {
		Sales    Params `yaml:"sales"`
		Analysis Params `yaml:"analysis"`
		Script   Params `yaml:"script"`
	} `yaml:"generation"`
	SalesTemplate string                       `yaml:"sales_template"`
	Locales       map[locale.Locale]LocaleText `yaml:"locales"`
}

// Params are the optional generation settings sent with a prompt.
type Params struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	JSON        bool    `yaml:"json"`
}

type ProfileText struct {
	Name             string `yaml:"name"`
	Status           string `yaml:"status"`
	PreviousPurchase string `yaml:"previous_purchase"`
	Budget           string `yaml:"budget"`
	Preferences      string `yaml:"preferences"`
}

type Instruction struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// LocaleText is every locale-dependent string of the prompts.
type LocaleText struct {
	Persona         string      `yaml:"persona"`
	Emphasis        string      `yaml:"emphasis"`
	ProfileHeading  string      `yaml:"profile_heading"`
	Labels          ProfileText `yaml:"labels"`
	Defaults        ProfileText `yaml:"defaults"`
	Placeholder     ProfileText `yaml:"placeholder"`
	ProductsHeading string      `yaml:"products_heading"`
	UpsellHeading   string      `yaml:"upsell_heading"`
	RulesHeading    string      `yaml:"rules_heading"`
	Rules           []string    `yaml:"rules"`
	Example         string      `yaml:"example"`
	Analysis        Instruction `yaml:"analysis"`
	Script          Instruction `yaml:"script"`
}

// Prompt is the system+user pair handed to the LLM.
type Prompt struct {
	System string
	User   string
	Params Params
}

// SalesContext is the per-request signal set assembled for a sales answer.
type SalesContext struct {
	Profile  catalog.ClientProfile
	Locale   locale.Locale
	Products []catalog.Product
	Upsell   *sales.Recommendation
	Query    string
}

// Library renders prompts from a validated Spec.
type Library struct {
	spec    Spec
	sales   *template.Template
	scripts map[locale.Locale]*template.Template
}

// Default returns the library built from the embedded prompts.yaml.
func Default() (*Library, error) {
	return Parse(defaultSpec)
}

// Load reads a prompts file; an empty path means the embedded default.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Library, error) {
	var spec Spec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	if strings.TrimSpace(spec.SalesTemplate) == "" {
		return nil, fmt.Errorf("prompts: sales_template is required")
	}
	funcs := template.FuncMap{
		"price": FormatUSD,
		"inc":   func(i int) int { return i + 1 },
	}
	salesTmpl, err := template.New("sales").Funcs(funcs).Option("missingkey=error").Parse(spec.SalesTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse sales template: %w", err)
	}
	lib := &Library{spec: spec, sales: salesTmpl, scripts: make(map[locale.Locale]*template.Template)}
	for _, loc := range locale.All {
		t, ok := spec.Locales[loc]
		if !ok {
			return nil, fmt.Errorf("prompts: missing locale %q", loc)
		}
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("prompts: locale %q: %w", loc, err)
		}
		st, err := template.New("script_" + string(loc)).Parse(t.Script.System)
		if err != nil {
			return nil, fmt.Errorf("parse script template %q: %w", loc, err)
		}
		lib.scripts[loc] = st
	}
	return lib, nil
}

func (t LocaleText) validate() error {
	switch {
	case t.Persona == "":
		return fmt.Errorf("persona is required")
	case len(t.Rules) == 0:
		return fmt.Errorf("rules are required")
	case t.Analysis.System == "" || t.Analysis.User == "":
		return fmt.Errorf("analysis instruction is required")
	case t.Script.System == "" || t.Script.User == "":
		return fmt.Errorf("script instruction is required")
	case t.Placeholder.Name == "" || t.Placeholder.Status == "" || t.Placeholder.Budget == "":
		return fmt.Errorf("placeholder profile is incomplete")
	}
	return nil
}

func (l *Library) text(loc locale.Locale) LocaleText {
	if t, ok := l.spec.Locales[loc]; ok {
		return t
	}
	return l.spec.Locales[locale.EN]
}

// Placeholder is the profile used for clients missing from the CRM.
func (l *Library) Placeholder(loc locale.Locale) catalog.ClientProfile {
	p := l.text(loc).Placeholder
	return catalog.ClientProfile{
		Name:        p.Name,
		DealStatus:  p.Status,
		Budget:      p.Budget,
		Preferences: p.Preferences,
	}
}

type profileView struct {
	Name             string
	Status           string
	PreviousPurchase string
	Budget           string
	Preferences      string
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Sales renders the consultant instruction. The user turn is the query as typed.
func (l *Library) Sales(sc SalesContext) (Prompt, error) {
	t := l.text(sc.Locale)
	view := profileView{
		Name:             orDefault(sc.Profile.Name, t.Defaults.Name),
		Status:           orDefault(sc.Profile.DealStatus, t.Defaults.Status),
		PreviousPurchase: orDefault(sc.Profile.PreviousPurchase, t.Defaults.PreviousPurchase),
		Budget:           orDefault(sc.Profile.Budget, t.Defaults.Budget),
		Preferences:      orDefault(sc.Profile.Preferences, t.Defaults.Preferences),
	}
	var b strings.Builder
	err := l.sales.Execute(&b, map[string]any{
		"T":        t,
		"Profile":  view,
		"Products": sc.Products,
		"Upsell":   sc.Upsell,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("render sales prompt: %w", err)
	}
	return Prompt{System: b.String(), User: sc.Query, Params: l.spec.Generation.Sales}, nil
}

// Analysis asks for a JSON verdict on a call transcript.
func (l *Library) Analysis(loc locale.Locale, transcript string) Prompt {
	t := l.text(loc)
	return Prompt{
		System: t.Analysis.System,
		User:   t.Analysis.User + "\n\n" + transcript,
		Params: l.spec.Generation.Analysis,
	}
}

// Script asks for a five-phase script template derived from the examples.
func (l *Library) Script(loc locale.Locale, examples []string) (Prompt, error) {
	if len(examples) == 0 {
		return Prompt{}, fmt.Errorf("script prompt: no example calls")
	}
	tmpl, ok := l.scripts[loc]
	if !ok {
		tmpl = l.scripts[locale.EN]
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, map[string]string{"Examples": strings.Join(examples, ExampleSeparator)}); err != nil {
		return Prompt{}, fmt.Errorf("render script prompt: %w", err)
	}
	return Prompt{System: b.String(), User: l.text(loc).Script.User, Params: l.spec.Generation.Script}, nil
}

// FormatUSD renders 280000 as "$280,000".
func FormatUSD(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}
