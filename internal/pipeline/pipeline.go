// Package pipeline runs a document through the three-step translation chain:
// grammar correction in the source language, translation to the target
// language, then a fluency adjustment pass in the target language. Each step
// resolves its own provider configuration, so a run can proofread with one
// vendor and translate with another.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/pipetran/internal/chunker"
	"github.com/valpere/pipetran/internal/config"
	"github.com/valpere/pipetran/internal/placeholder"
	"github.com/valpere/pipetran/internal/postprocess"
	"github.com/valpere/pipetran/internal/provider"
	"github.com/valpere/pipetran/internal/secrets"
	"github.com/valpere/pipetran/internal/sentence"
	"github.com/valpere/pipetran/internal/store"
	"github.com/valpere/pipetran/internal/validator"
)

// Request describes one document to process.
type Request struct {
	Text           string
	SourceLang     string
	TargetLang     string
	CorrectGrammar bool
	Glossary       map[string]string
}

// Result carries the output of every stage so callers can persist source and
// target sentence artifacts independently.
type Result struct {
	CorrectedText   string
	SourceSentences []string
	DraftText       string
	FinalText       string
	TargetSentences []string
	GrammarApplied  bool
	FromCache       bool
	Warnings        []string
}

func (r *Result) SourceCount() int { return len(r.SourceSentences) }
func (r *Result) TargetCount() int { return len(r.TargetSentences) }

// StepError reports which pipeline step failed. Unwrap exposes the underlying
// provider or configuration error for errors.Is checks.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ClientFactory builds the LLM client for a resolved step configuration.
// Tests substitute it to avoid real HTTP calls.
type ClientFactory func(ctx context.Context, cfg provider.Config) (provider.Client, error)

type Pipeline struct {
	settings   *config.Settings
	newClient  ClientFactory
	engine     Engine
	memory     *store.Store
	check      *validator.Validator
	chunkRunes int
}

type Option func(*Pipeline)

// WithClientFactory overrides how per-step LLM clients are constructed.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Pipeline) { p.newClient = f }
}

// WithEngine routes the translation step through a machine-translation
// backend instead of the configured LLM.
func WithEngine(e Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// WithMemory enables the translation memory: identical inputs for the same
// language pair are served from the store without invoking any provider.
func WithMemory(s *store.Store) Option {
	return func(p *Pipeline) { p.memory = s }
}

// WithValidation checks the final output's language and records a warning on
// mismatch.
func WithValidation(v *validator.Validator) Option {
	return func(p *Pipeline) { p.check = v }
}

// WithChunking splits texts longer than maxRunes into chunks that are
// processed sequentially with a short continuity context between them.
func WithChunking(maxRunes int) Option {
	return func(p *Pipeline) { p.chunkRunes = maxRunes }
}

func New(settings *config.Settings, secretStore secrets.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{settings: settings}
	p.newClient = func(ctx context.Context, cfg provider.Config) (provider.Client, error) {
		return provider.New(ctx, cfg, secretStore)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preflight resolves every step's configuration and constructs its client
// without invoking anything, so configuration and credential problems surface
// before a batch starts instead of failing file by file.
func (p *Pipeline) Preflight(ctx context.Context) error {
	for _, step := range config.Steps {
		eff, err := p.settings.Resolve(step)
		if err != nil {
			return fmt.Errorf("failed to resolve %s step: %w", step, err)
		}
		if step == config.StepTranslation && p.engine != nil {
			continue
		}
		if _, err := p.newClient(ctx, eff.ProviderConfig()); err != nil {
			return fmt.Errorf("failed to prepare %s step: %w", step, err)
		}
	}
	return nil
}

// Run processes one document through the full chain. A failure in any step
// returns a *StepError naming it; nothing is partially persisted.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("input text is empty")
	}

	if p.memory != nil {
		if res, ok := p.fromMemory(ctx, req); ok {
			return res, nil
		}
	}

	protected, markers := placeholder.Protect(req.Text)
	res := &Result{GrammarApplied: req.CorrectGrammar}

	corrected := protected
	if req.CorrectGrammar {
		out, err := p.correct(ctx, corrected, req.SourceLang, markers)
		if err != nil {
			return nil, &StepError{Step: config.StepGrammar, Err: err}
		}
		corrected = out
	}
	res.CorrectedText = placeholder.Restore(corrected, markers)
	res.SourceSentences = sentence.Split(res.CorrectedText)

	translated, err := p.translate(ctx, corrected, req, markers)
	if err != nil {
		return nil, &StepError{Step: config.StepTranslation, Err: err}
	}
	res.DraftText = placeholder.Restore(translated, markers)

	adjusted, err := p.adjust(ctx, corrected, translated, req, markers)
	if err != nil {
		return nil, &StepError{Step: config.StepAdjustment, Err: err}
	}
	res.FinalText = placeholder.Restore(adjusted, markers)
	res.TargetSentences = sentence.Split(res.FinalText)

	if res.SourceCount() != res.TargetCount() {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"sentence count changed: %d source, %d target", res.SourceCount(), res.TargetCount()))
	}
	if p.check != nil {
		if err := p.check.Check(res.FinalText, req.TargetLang); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("language validation: %v", err))
		}
	}

	if p.memory != nil {
		if err := p.memory.SaveResult(ctx, req.Text, req.SourceLang, req.TargetLang,
			res.CorrectedText, res.FinalText, res.SourceCount(), res.TargetCount()); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("failed to save to translation memory: %v", err))
		}
	}
	return res, nil
}

// Analysis is the result of running only the source-side half of the chain.
type Analysis struct {
	CorrectedText  string
	Sentences      []string
	GrammarApplied bool
}

// Analyze corrects and splits a document without translating it.
func (p *Pipeline) Analyze(ctx context.Context, text, sourceLang string, correctGrammar bool) (*Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("input text is empty")
	}

	protected, markers := placeholder.Protect(text)
	out := protected
	if correctGrammar {
		corrected, err := p.correct(ctx, protected, sourceLang, markers)
		if err != nil {
			return nil, &StepError{Step: config.StepGrammar, Err: err}
		}
		out = corrected
	}
	restored := placeholder.Restore(out, markers)
	return &Analysis{
		CorrectedText:  restored,
		Sentences:      sentence.Split(restored),
		GrammarApplied: correctGrammar,
	}, nil
}

func (p *Pipeline) fromMemory(ctx context.Context, req Request) (*Result, bool) {
	entry, found, err := p.memory.GetCachedResult(ctx, req.Text, req.SourceLang, req.TargetLang)
	if err != nil || !found {
		return nil, false
	}
	res := &Result{
		CorrectedText:   entry.CorrectedText,
		SourceSentences: sentence.Split(entry.CorrectedText),
		DraftText:       entry.TranslatedText,
		FinalText:       entry.TranslatedText,
		TargetSentences: sentence.Split(entry.TranslatedText),
		GrammarApplied:  req.CorrectGrammar,
		FromCache:       true,
	}
	if res.SourceCount() != res.TargetCount() {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"sentence count changed: %d source, %d target", res.SourceCount(), res.TargetCount()))
	}
	return res, true
}

func (p *Pipeline) correct(ctx context.Context, text, sourceLang string, markers *placeholder.Map) (string, error) {
	eff, err := p.settings.Resolve(config.StepGrammar)
	if err != nil {
		return "", err
	}
	client, err := p.newClient(ctx, eff.ProviderConfig())
	if err != nil {
		return "", err
	}
	return p.invokeChunked(ctx, client, text, func(string) string {
		return grammarSystemPrompt(sourceLang, markers)
	})
}

func (p *Pipeline) translate(ctx context.Context, text string, req Request, markers *placeholder.Map) (string, error) {
	if p.engine != nil {
		out, err := p.engine.Translate(ctx, text, req.SourceLang, req.TargetLang)
		if err != nil {
			return "", fmt.Errorf("%s engine: %w", p.engine.Name(), err)
		}
		return out, nil
	}

	eff, err := p.settings.Resolve(config.StepTranslation)
	if err != nil {
		return "", err
	}
	client, err := p.newClient(ctx, eff.ProviderConfig())
	if err != nil {
		return "", err
	}
	return p.invokeChunked(ctx, client, text, func(prev string) string {
		return translationSystemPrompt(req.SourceLang, req.TargetLang, req.Glossary, prev, markers)
	})
}

func (p *Pipeline) adjust(ctx context.Context, sourceText, draftText string, req Request, markers *placeholder.Map) (string, error) {
	eff, err := p.settings.Resolve(config.StepAdjustment)
	if err != nil {
		return "", err
	}
	client, err := p.newClient(ctx, eff.ProviderConfig())
	if err != nil {
		return "", err
	}

	system, user := adjustmentPrompts(req.SourceLang, req.TargetLang, sourceText, draftText, markers)
	out, err := client.Invoke(ctx, system, user)
	if err != nil {
		return "", err
	}
	return postprocess.Clean(out), nil
}

// invokeChunked runs a step's prompt over the text, splitting it when chunking
// is enabled and the text exceeds the limit. The adjustment step never chunks
// because its source and draft halves cannot be split in alignment.
func (p *Pipeline) invokeChunked(ctx context.Context, client provider.Client, text string, system func(previousContext string) string) (string, error) {
	if p.chunkRunes <= 0 || len([]rune(text)) <= p.chunkRunes {
		out, err := client.Invoke(ctx, system(""), text)
		if err != nil {
			return "", err
		}
		return postprocess.Clean(out), nil
	}

	chunks := chunker.Chunk(text, p.chunkRunes)
	parts := make([]string, 0, len(chunks))
	previous := ""
	for _, chunk := range chunks {
		out, err := client.Invoke(ctx, system(previous), chunk)
		if err != nil {
			return "", err
		}
		parts = append(parts, postprocess.Clean(out))
		previous = chunker.ExtractContext(chunk, chunker.DefaultContextWords)
	}
	return strings.Join(parts, "\n\n"), nil
}
