package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/chunk"
	"autosales-assistant-backend/internal/llm"
	"autosales-assistant-backend/internal/locale"
	"autosales-assistant-backend/internal/metrics"
	"autosales-assistant-backend/internal/prompt"
	"autosales-assistant-backend/internal/sales"
	"autosales-assistant-backend/internal/session"
)

// Incoming is one message delivered by a transport.
type Incoming struct {
	UserID    int64
	Locale    string // optional hint such as "ru-RU"
	FirstName string
	Text      string
}

// Segment is one outgoing message. Markdown marks structured-text rendering.
type Segment struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
}

// Presence receives progress signals while a reply is prepared. The func
// returned by ShowStatus removes the status; Handle calls it before returning.
type Presence interface {
	Typing(ctx context.Context)
	ShowStatus(ctx context.Context, text string) (clear func())
}

// NopPresence discards progress signals.
type NopPresence struct{}

func (NopPresence) Typing(context.Context)                    {}
func (NopPresence) ShowStatus(context.Context, string) func() { return func() {} }

// Catalog is the client and product lookup used by sales turns.
type Catalog interface {
	FindClient(externalUserID int64) (catalog.ClientProfile, bool)
	EnsureDemoProfile(externalUserID int64, firstName string) (catalog.ClientProfile, bool)
	Products() []catalog.Product
}

type Options struct {
	FreeModel       string
	AdvancedModel   string
	MaxSegmentLen   int
	DemoMode        bool
	SalesTimeout    time.Duration
	AnalysisTimeout time.Duration
	ScriptTimeout   time.Duration
}

func (o *Options) defaults() {
	if o.MaxSegmentLen <= 0 {
		o.MaxSegmentLen = chunk.DefaultMaxLen
	}
	if o.SalesTimeout <= 0 {
		o.SalesTimeout = 30 * time.Second
	}
	if o.AnalysisTimeout <= 0 {
		o.AnalysisTimeout = 60 * time.Second
	}
	if o.ScriptTimeout <= 0 {
		o.ScriptTimeout = 90 * time.Second
	}
}

type Deps struct {
	Catalog  Catalog
	Upsell   *sales.UpsellEngine
	Prompts  *prompt.Library
	LLM      llm.Completer
	Modes    session.Store
	Examples *ExampleCalls
	Metrics  *metrics.AssistantMetrics
	Logger   *zap.Logger
}

// Assistant routes messages through the per-user mode state machine.
type Assistant struct {
	catalog  Catalog
	upsell   *sales.UpsellEngine
	prompts  *prompt.Library
	llm      llm.Completer
	modes    session.Store
	locks    *session.Locks
	examples *ExampleCalls
	metrics  *metrics.AssistantMetrics
	logger   *zap.Logger
	opts     Options
}

func New(deps Deps, opts Options) *Assistant {
	opts.defaults()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	upsell := deps.Upsell
	if upsell == nil {
		upsell = sales.NewUpsellEngine(sales.DefaultUpsellRules)
	}
	return &Assistant{
		catalog:  deps.Catalog,
		upsell:   upsell,
		prompts:  deps.Prompts,
		llm:      deps.LLM,
		modes:    deps.Modes,
		locks:    session.NewLocks(),
		examples: deps.Examples,
		metrics:  deps.Metrics,
		logger:   logger.Named("assistant"),
		opts:     opts,
	}
}

// Handle processes one message to completion. Mode reads and writes for a
// user are serialized, and failures come back as localized segments.
func (a *Assistant) Handle(ctx context.Context, in Incoming, presence Presence) []Segment {
	if presence == nil {
		presence = NopPresence{}
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil
	}
	unlock := a.locks.Lock(in.UserID)
	defer unlock()

	loc := locale.Detect(in.Text, in.Locale)
	t := textFor(loc)
	log := a.logger.With(zap.Int64("user_id", in.UserID), zap.String("locale", string(loc)))

	if IsStartCommand(in.Text) {
		if err := a.modes.SetMode(ctx, in.UserID, session.ModeSales); err != nil {
			log.Error("reset mode failed", zap.Error(err))
			a.metrics.ObserveFailure("start", "store")
			return plain(t.GenericFail)
		}
		return a.segments(t.Welcome)
	}

	if target, ok := DetectModeSwitch(in.Text); ok {
		if err := a.modes.SetMode(ctx, in.UserID, target); err != nil {
			log.Error("mode switch failed", zap.Stringer("mode", target), zap.Error(err))
			a.metrics.ObserveFailure(target.String(), "store")
			return plain(t.GenericFail)
		}
		a.metrics.ObserveModeSwitch(target.String())
		log.Info("mode switched", zap.Stringer("mode", target))
		return a.segments(t.Confirm[target])
	}

	mode, err := a.modes.Mode(ctx, in.UserID)
	if err != nil {
		log.Error("load mode failed", zap.Error(err))
		a.metrics.ObserveFailure("unknown", "store")
		return plain(t.GenericFail)
	}
	a.metrics.ObserveMessage(mode.String(), string(loc))

	switch mode {
	case session.ModeAnalysis:
		return a.handleAnalysis(ctx, in, loc, presence, log)
	case session.ModeScriptGen:
		return a.handleScript(ctx, loc, presence, log)
	default:
		return a.handleSales(ctx, in, loc, presence, log)
	}
}

// ResolveProfile returns the CRM record for userID or the locale placeholder.
// It never writes to the catalog.
func (a *Assistant) ResolveProfile(userID int64, loc locale.Locale) (catalog.ClientProfile, bool) {
	if p, ok := a.catalog.FindClient(userID); ok {
		return p, true
	}
	return a.prompts.Placeholder(loc), false
}

// EnsureDemoProfile registers the demonstration VIP record for userID.
func (a *Assistant) EnsureDemoProfile(userID int64, firstName string) (catalog.ClientProfile, bool) {
	p, created := a.catalog.EnsureDemoProfile(userID, firstName)
	if created {
		a.metrics.ObserveDemoProfile()
		a.logger.Info("demo profile registered", zap.Int64("user_id", userID), zap.String("name", p.Name))
	}
	return p, created
}

func (a *Assistant) handleSales(ctx context.Context, in Incoming, loc locale.Locale, presence Presence, log *zap.Logger) []Segment {
	presence.Typing(ctx)
	t := textFor(loc)

	profile, found := a.ResolveProfile(in.UserID, loc)
	if !found && a.opts.DemoMode {
		profile, _ = a.EnsureDemoProfile(in.UserID, in.FirstName)
	}

	budget := sales.ParseBudget(profile.Budget)
	products := sales.RelevantProducts(a.catalog.Products(), in.Text, budget)
	var upsell *sales.Recommendation
	if rec, ok := a.upsell.Recommend(profile, loc); ok {
		upsell = &rec
	}

	p, err := a.prompts.Sales(prompt.SalesContext{
		Profile:  profile,
		Locale:   loc,
		Products: products,
		Upsell:   upsell,
		Query:    in.Text,
	})
	if err != nil {
		log.Error("assemble sales prompt failed", zap.Error(err))
		a.metrics.ObserveFailure("sales", "prompt")
		return plain(t.GenericFail)
	}

	suggestion, err := a.complete(ctx, "sales", a.opts.FreeModel, p, a.opts.SalesTimeout)
	if err != nil {
		log.Error("sales completion failed", zap.Error(err))
		a.metrics.ObserveFailure("sales", "llm")
		return plain(t.GenericFail)
	}
	log.Debug("sales reply ready", zap.Int("products", len(products)), zap.Bool("upsell", upsell != nil))
	return a.segments(t.salesReply(profile, suggestion))
}

func (a *Assistant) handleAnalysis(ctx context.Context, in Incoming, loc locale.Locale, presence Presence, log *zap.Logger) []Segment {
	t := textFor(loc)
	presence.Typing(ctx)
	clearStatus := presence.ShowStatus(ctx, t.Analyzing)
	defer clearStatus()

	raw, err := a.complete(ctx, "analysis", a.opts.AdvancedModel, a.prompts.Analysis(loc, in.Text), a.opts.AnalysisTimeout)
	if err != nil {
		log.Error("analysis completion failed", zap.Error(err))
		a.metrics.ObserveFailure("analysis", "llm")
		return plain(t.GenericFail)
	}
	result, err := llm.ParseCallAnalysis(raw)
	if err != nil {
		log.Warn("analysis result rejected", zap.Error(err), zap.String("raw", raw))
		a.metrics.ObserveFailure("analysis", "malformed")
		return plain(t.AnalysisErr)
	}
	return a.segments(t.analysisReply(result))
}

func (a *Assistant) handleScript(ctx context.Context, loc locale.Locale, presence Presence, log *zap.Logger) []Segment {
	t := textFor(loc)
	clearStatus := presence.ShowStatus(ctx, t.Scripting)
	defer clearStatus()
	presence.Typing(ctx)

	if a.examples == nil {
		log.Error("script generation without example calls")
		a.metrics.ObserveFailure("script_gen", "examples")
		return plain(t.ScriptErr)
	}
	examples, err := a.examples.Load()
	if err != nil {
		log.Error("load example calls failed", zap.Error(err), zap.Bool("missing", errors.Is(err, ErrExamplesMissing)))
		a.metrics.ObserveFailure("script_gen", "examples")
		return plain(t.ScriptErr)
	}
	p, err := a.prompts.Script(loc, examples)
	if err != nil {
		log.Error("assemble script prompt failed", zap.Error(err))
		a.metrics.ObserveFailure("script_gen", "prompt")
		return plain(t.ScriptErr)
	}
	script, err := a.complete(ctx, "script", a.opts.AdvancedModel, p, a.opts.ScriptTimeout)
	if err != nil {
		log.Error("script completion failed", zap.Error(err))
		a.metrics.ObserveFailure("script_gen", "llm")
		return plain(t.GenericFail)
	}
	return a.segments(t.scriptReply(script))
}

func (a *Assistant) complete(ctx context.Context, purpose, model string, p prompt.Prompt, timeout time.Duration) (string, error) {
	start := time.Now()
	out, err := a.llm.Complete(ctx, llm.Request{
		Model:       model,
		System:      p.System,
		User:        p.User,
		MaxTokens:   p.Params.MaxTokens,
		Temperature: p.Params.Temperature,
		JSON:        p.Params.JSON,
		Timeout:     timeout,
	})
	a.metrics.ObserveCompletion(purpose, err == nil, time.Since(start).Seconds())
	return out, err
}

func (a *Assistant) segments(text string) []Segment {
	parts := chunk.Split(text, a.opts.MaxSegmentLen)
	out := make([]Segment, 0, len(parts))
	for _, p := range parts {
		out = append(out, Segment{Text: p, Markdown: true})
	}
	return out
}

func plain(text string) []Segment {
	return []Segment{{Text: text}}
}
