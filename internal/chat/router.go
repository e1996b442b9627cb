package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wedlii/wedbot/internal/llm"
	"github.com/wedlii/wedbot/internal/memory"
	"github.com/wedlii/wedbot/internal/observability"
	"github.com/wedlii/wedbot/internal/planning"
	"github.com/wedlii/wedbot/internal/policy"
	"github.com/wedlii/wedbot/internal/reliability"
	"github.com/wedlii/wedbot/internal/wellness"
)

const (
	ApologyReply       = "Something went wrong. Please try again."
	StressDefaultReply = "Take a deep breath. You've got this."
	EmptyReplyFallback = "I’m not sure how to help with that."

	DefaultGenerationTimeout = 30 * time.Second
)

type Conversation interface {
	GetConversation(ctx context.Context, userID string) ([]memory.Message, error)
	SaveMessage(ctx context.Context, userID, role, content string) error
}

type WellnessSource interface {
	Pick(ctx context.Context, kind wellness.Kind) (*wellness.Item, error)
}

type PreferenceSource interface {
	Preferences(ctx context.Context, userID string) (planning.Preferences, error)
}

type ChecklistGenerator interface {
	GenerateChecklist(ctx context.Context, prefs planning.Preferences) ([]string, error)
}

type ChecklistSink interface {
	SaveChecklist(ctx context.Context, userID, title string, items []string) (int, error)
}

// Reply is a successful routing outcome.
type Reply struct {
	Text  string       `json:"reply"`
	Route policy.Route `json:"route"`
}

// Options wires a Router. Classifier, Logger and GenerationTimeout default
// when left zero.
type Options struct {
	Classifier        policy.Classifier
	Conversation      Conversation
	Wellness          WellnessSource
	Preferences       PreferenceSource
	Checklists        ChecklistGenerator
	ChecklistSink     ChecklistSink
	Generator         llm.Generator
	SystemPrompt      string
	GenerationTimeout time.Duration
	Logger            *zap.Logger
	Metrics           *observability.Metrics
}

// Router picks exactly one handling path per message: stress support, then
// checklist creation, then a model reply grounded in recent conversation.
type Router struct {
	classifier    policy.Classifier
	conversation  Conversation
	wellness      WellnessSource
	preferences   PreferenceSource
	checklists    ChecklistGenerator
	checklistSink ChecklistSink
	generator     llm.Generator
	provider      string
	systemPrompt  string
	timeout       time.Duration
	logger        *zap.Logger
	metrics       *observability.Metrics
}

func NewRouter(opts Options) *Router {
	if opts.Classifier == nil {
		opts.Classifier = policy.NewKeywordClassifier()
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = DefaultGenerationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	provider := ""
	if opts.Generator != nil {
		provider = llm.Provider(opts.Generator)
	}
	return &Router{
		classifier:    opts.Classifier,
		conversation:  opts.Conversation,
		wellness:      opts.Wellness,
		preferences:   opts.Preferences,
		checklists:    opts.Checklists,
		checklistSink: opts.ChecklistSink,
		generator:     opts.Generator,
		provider:      provider,
		systemPrompt:  opts.SystemPrompt,
		timeout:       opts.GenerationTimeout,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
}

// Reply routes message and always returns user-facing text. Every fault is
// logged and replaced with ApologyReply.
func (r *Router) Reply(ctx context.Context, userID, message string) (text string) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.ObserveFault("panic")
			r.logger.Error("chat reply panicked",
				zap.String("user_id", userID),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			text = ApologyReply
		}
	}()

	reply, err := r.Handle(ctx, userID, message)
	if err != nil {
		kind := "unknown"
		var fault *Fault
		if errors.As(err, &fault) {
			kind = string(fault.Kind)
		}
		r.metrics.ObserveFault(kind)
		r.logger.Error("chat reply failed",
			zap.String("user_id", userID),
			zap.String("fault", kind),
			zap.Error(err),
		)
		return ApologyReply
	}
	return reply.Text
}

// Handle routes message and reports failures as *Fault.
func (r *Router) Handle(ctx context.Context, userID, message string) (Reply, error) {
	started := time.Now()
	defer func() { r.metrics.ObserveStage(observability.StageChatTotal, time.Since(started)) }()

	decision := r.classifier.Classify(message)
	r.metrics.ObserveStage(observability.StageClassify, time.Since(started))

	var (
		text string
		err  error
	)
	switch decision.Route {
	case policy.RouteStress:
		text, err = r.handleStress(ctx, userID, message)
	case policy.RouteChecklist:
		text, err = r.handleChecklist(ctx, userID, message)
	default:
		text, err = r.handleDefault(ctx, userID, message)
	}
	if err != nil {
		return Reply{}, err
	}

	r.metrics.ObserveReply(string(decision.Route))
	r.logger.Debug("chat reply",
		zap.String("user_id", userID),
		zap.String("route", string(decision.Route)),
		zap.String("keyword", decision.Keyword),
	)
	return Reply{Text: text, Route: decision.Route}, nil
}

func (r *Router) handleStress(ctx context.Context, userID, message string) (string, error) {
	var affirmation, breathing *wellness.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		affirmation, err = r.pick(gctx, wellness.KindAffirmation)
		return err
	})
	g.Go(func() (err error) {
		breathing, err = r.pick(gctx, wellness.KindBreathing)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", storageFault("load wellness content", err)
	}

	reply := composeStressReply(affirmation, breathing)
	if err := r.record(ctx, userID, message, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// pick runs off the caller's goroutine, so a panic is turned into an error
// here where Reply cannot recover it.
func (r *Router) pick(ctx context.Context, kind wellness.Kind) (item *wellness.Item, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pick %s panicked: %v", kind, p)
		}
	}()
	return r.wellness.Pick(ctx, kind)
}

func composeStressReply(affirmation, breathing *wellness.Item) string {
	parts := make([]string, 0, 2)
	if affirmation != nil && strings.TrimSpace(affirmation.Content) != "" {
		parts = append(parts, affirmation.Content)
	}
	if breathing != nil {
		parts = append(parts, fmt.Sprintf("Try this breathing exercise:\n%s — %s", breathing.Title, breathing.Content))
	}
	if len(parts) == 0 {
		return StressDefaultReply
	}
	return strings.Join(parts, "\n\n")
}

func (r *Router) handleChecklist(ctx context.Context, userID, message string) (string, error) {
	prefs, err := r.preferences.Preferences(ctx, userID)
	if err != nil {
		return "", storageFault("load preferences", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, r.timeout)
	started := time.Now()
	items, err := r.checklists.GenerateChecklist(genCtx, prefs)
	cancel()
	r.observeGeneration(time.Since(started), err)
	if err != nil {
		return "", generationFault("generate checklist", err)
	}

	count, err := r.checklistSink.SaveChecklist(ctx, userID, planning.DefaultChecklistTitle, items)
	if err != nil {
		return "", storageFault("save checklist", err)
	}

	reply := fmt.Sprintf("I’ve created your wedding checklist with %d tasks.", count)
	if err := r.record(ctx, userID, message, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (r *Router) handleDefault(ctx context.Context, userID, message string) (string, error) {
	loadStarted := time.Now()
	history, err := r.conversation.GetConversation(ctx, userID)
	r.metrics.ObserveStage(observability.StageContextLoad, time.Since(loadStarted))
	if err != nil {
		return "", storageFault("load conversation", err)
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role != memory.RoleUser && m.Role != memory.RoleAssistant {
			continue
		}
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	genCtx, cancel := context.WithTimeout(ctx, r.timeout)
	started := time.Now()
	text, err := r.generator.Generate(genCtx, llm.Request{System: r.systemPrompt, Messages: msgs})
	cancel()
	r.observeGeneration(time.Since(started), err)
	if err != nil {
		return "", generationFault("generate reply", err)
	}
	if strings.TrimSpace(text) == "" {
		r.metrics.ObserveIndicator("empty_reply_fallback")
		text = EmptyReplyFallback
	}

	if err := r.record(ctx, userID, message, text); err != nil {
		return "", err
	}
	return text, nil
}

// record appends the user turn and then the assistant turn.
func (r *Router) record(ctx context.Context, userID, message, reply string) error {
	if err := r.conversation.SaveMessage(ctx, userID, memory.RoleUser, message); err != nil {
		return storageFault("save user turn", err)
	}
	if err := r.conversation.SaveMessage(ctx, userID, memory.RoleAssistant, reply); err != nil {
		return storageFault("save assistant turn", err)
	}
	return nil
}

func (r *Router) observeGeneration(d time.Duration, err error) {
	r.metrics.ObserveStage(observability.StageGeneration, d)
	r.metrics.ObserveGeneration(d)
	if err != nil {
		r.metrics.ObserveProviderError(r.provider, reliability.ErrorCode(err))
	}
}
