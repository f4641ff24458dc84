package enrich

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/resilience"
	"github.com/sells-group/retreat-leads/internal/scrape"
	"github.com/sells-group/retreat-leads/pkg/anthropic"
)

// ClassificationCache is the part of store.Store the classifier uses.
type ClassificationCache interface {
	GetClassification(ctx context.Context, organizerKey string) (*model.AIAnalysis, error)
	SetClassification(ctx context.Context, organizerKey string, a model.AIAnalysis, ttl time.Duration) error
}

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	Model          string
	MaxTokens      int64
	MaxPageChars   int
	Concurrency    int
	RequestsPerSec float64

	// SiteRequestsPerSec paces organizer website page reads.
	SiteRequestsPerSec float64
	CacheTTL           time.Duration
	Backoff            resilience.Backoff
}

// Outcome says how an organizer's classification was obtained.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCached
	OutcomeAnalyzed
	OutcomeNoWebsite
)

// defaultConfidence is used when the model omits a confidence value.
const defaultConfidence = 50

// noWebsiteAnalysis is the fixed result for organizers with no website.
var noWebsiteAnalysis = model.AIAnalysis{
	Classification: model.AIUnclear,
	Confidence:     30,
	ProfileSummary: "No website available for analysis.",
	FitReasoning:   "Cannot determine fit without website data.",
}

// Classifier labels organizers as facilitators or venue owners with a
// language model, reading their websites for context.
type Classifier struct {
	client  anthropic.Client
	pages   scrape.Fetcher
	cache   ClassificationCache
	opts    ClassifierOptions
	limiter *rate.Limiter
	site    *rate.Limiter
	breaker *resilience.Breaker

	mu    sync.Mutex
	usage anthropic.TokenUsage
}

// NewClassifier creates a Classifier. cache may be nil.
func NewClassifier(client anthropic.Client, pages scrape.Fetcher, cache ClassificationCache, opts ClassifierOptions) *Classifier {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1500
	}
	if opts.MaxPageChars <= 0 {
		opts.MaxPageChars = 4000
	}
	return &Classifier{
		client:  client,
		pages:   pages,
		cache:   cache,
		opts:    opts,
		limiter: newLimiter(opts.RequestsPerSec),
		site:    newLimiter(opts.SiteRequestsPerSec),
		breaker: resilience.NewBreaker("anthropic", 5, time.Minute),
	}
}

// Usage returns the tokens spent so far.
func (c *Classifier) Usage() anthropic.TokenUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// Classify asks the model about oc. The bool is false when there is no
// usable classification: API errors, malformed JSON and unknown labels all
// end up here.
func (c *Classifier) Classify(ctx context.Context, oc OrganizerContext) (model.AIAnalysis, bool) {
	temp := 0.3
	req := anthropic.MessageRequest{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		System:      []anthropic.SystemBlock{{Text: systemPrompt, Cache: true}},
		Messages:    []anthropic.Message{{Role: "user", Content: BuildPrompt(oc)}},
		Temperature: &temp,
	}

	var resp *anthropic.MessageResponse
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = resilience.RetryVal(ctx, c.opts.Backoff, "anthropic.create_message", func(ctx context.Context) (*anthropic.MessageResponse, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return c.client.CreateMessage(ctx, req)
		})
		return err
	})
	if err != nil {
		zap.L().Warn("enrich: classification request failed", zap.String("organizer", oc.Name), zap.Error(err))
		return model.AIAnalysis{}, false
	}

	c.mu.Lock()
	c.usage.Add(resp.Usage)
	c.mu.Unlock()

	a, err := ParseAnalysis(resp.Text())
	if err != nil {
		zap.L().Warn("enrich: unusable classification", zap.String("organizer", oc.Name), zap.Error(err))
		return model.AIAnalysis{}, false
	}
	return a, true
}

// Analyze resolves one organizer: cache first, then the fixed no-website
// result, then a fresh classification which is cached on success.
func (c *Classifier) Analyze(ctx context.Context, oc OrganizerContext) (model.AIAnalysis, Outcome) {
	if c.cache != nil {
		cached, err := c.cache.GetClassification(ctx, oc.Key)
		if err != nil {
			zap.L().Warn("enrich: cache read failed", zap.String("organizer_key", oc.Key), zap.Error(err))
		} else if cached != nil {
			return *cached, OutcomeCached
		}
	}

	if strings.TrimSpace(oc.Website) == "" {
		return noWebsiteAnalysis, OutcomeNoWebsite
	}

	if c.pages != nil {
		oc.Site = ReadSite(ctx, c.pages, oc.Website, c.opts.MaxPageChars, c.site.Wait)
	}

	a, ok := c.Classify(ctx, oc)
	if !ok {
		return model.AIAnalysis{}, OutcomeFailed
	}

	if c.cache != nil {
		if err := c.cache.SetClassification(ctx, oc.Key, a, c.opts.CacheTTL); err != nil {
			zap.L().Warn("enrich: cache write failed", zap.String("organizer_key", oc.Key), zap.Error(err))
		}
	}
	return a, OutcomeAnalyzed
}

// ClassifyStats counts what a classification pass did.
type ClassifyStats struct {
	Organizers int
	Analyzed   int
	Cached     int
	NoWebsite  int
	Failed     int
	ByClass    map[model.AIClass]int
}

// Enrich classifies every organizer among rows once and writes the AI
// columns onto all of their rows. Organizers without a classification get
// empty AI columns.
func (c *Classifier) Enrich(ctx context.Context, rows []model.Occurrence) ClassifyStats {
	contexts := BuildContexts(rows)

	type result struct {
		a       model.AIAnalysis
		outcome Outcome
	}
	results := make([]result, len(contexts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, oc := range contexts {
		i, oc := i, oc
		g.Go(func() error {
			a, outcome := c.Analyze(gctx, oc)
			results[i] = result{a: a, outcome: outcome}
			return nil
		})
	}
	_ = g.Wait()

	stats := ClassifyStats{Organizers: len(contexts), ByClass: make(map[model.AIClass]int)}
	byKey := make(map[string]result, len(contexts))
	for i, oc := range contexts {
		r := results[i]
		byKey[oc.Key] = r
		switch r.outcome {
		case OutcomeAnalyzed:
			stats.Analyzed++
		case OutcomeCached:
			stats.Cached++
		case OutcomeNoWebsite:
			stats.NoWebsite++
		default:
			stats.Failed++
		}
		if r.outcome != OutcomeFailed {
			stats.ByClass[r.a.Classification]++
		}
	}

	for i := range rows {
		r := byKey[rows[i].OrganizerKey]
		if r.outcome == OutcomeFailed {
			for _, col := range model.AIColumns {
				rows[i].Set(col, "")
			}
			continue
		}
		r.a.Apply(&rows[i])
	}

	c.Usage().LogCost(c.opts.Model, "classify")
	zap.L().Info("enrich: classification pass complete",
		zap.Int("organizers", stats.Organizers),
		zap.Int("analyzed", stats.Analyzed),
		zap.Int("cached", stats.Cached),
		zap.Int("no_website", stats.NoWebsite),
		zap.Int("failed", stats.Failed),
	)
	return stats
}

// rawAnalysis mirrors the JSON object the model is asked for. Confidence
// may arrive as a number or a string; list fields as a list or one string.
type rawAnalysis struct {
	Classification        string     `json:"classification"`
	Confidence            any        `json:"confidence"`
	ProfileSummary        string     `json:"profile_summary"`
	WebsiteAnalysis       string     `json:"website_analysis"`
	OutreachTalkingPoints stringList `json:"outreach_talking_points"`
	FitReasoning          string     `json:"fit_reasoning"`
	RedFlags              stringList `json:"red_flags"`
	GreenFlags            stringList `json:"green_flags"`
}

type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s = strings.TrimSpace(s); s != "" {
		*l = []string{s}
	}
	return nil
}

// ParseAnalysis decodes a model reply. Code fences and surrounding prose
// are tolerated; an unknown classification label is an error.
func ParseAnalysis(text string) (model.AIAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return model.AIAnalysis{}, eris.Wrap(err, "enrich: parse classification")
	}
	class, ok := model.ParseAIClass(raw.Classification)
	if !ok {
		return model.AIAnalysis{}, eris.Errorf("enrich: unknown classification %q", raw.Classification)
	}
	return model.AIAnalysis{
		Classification:        class,
		Confidence:            confidence(raw.Confidence),
		ProfileSummary:        strings.TrimSpace(raw.ProfileSummary),
		WebsiteAnalysis:       strings.TrimSpace(raw.WebsiteAnalysis),
		OutreachTalkingPoints: raw.OutreachTalkingPoints,
		FitReasoning:          strings.TrimSpace(raw.FitReasoning),
		RedFlags:              raw.RedFlags,
		GreenFlags:            raw.GreenFlags,
	}, nil
}

// confidence reads a 0-100 value, clamping out-of-range numbers. Missing or
// unreadable values become defaultConfidence.
func confidence(v any) int {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return defaultConfidence
		}
		return min(max(int(math.Round(x)), 0), 100)
	case string:
		if p := model.ParseConfidence(strings.TrimSuffix(strings.TrimSpace(x), "%")); p != nil {
			return *p
		}
	}
	return defaultConfidence
}

// cleanJSON extracts a JSON object from text that may be wrapped in
// markdown code fences or prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if rest, ok := strings.CutPrefix(text, "```json"); ok {
		text = rest
	} else if rest, ok := strings.CutPrefix(text, "```"); ok {
		text = rest
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
