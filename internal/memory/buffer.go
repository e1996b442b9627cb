package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wedlii/wedbot/internal/observability"
	"github.com/wedlii/wedbot/internal/policy"
)

// BufferOptions tunes a Buffer. Zero values select the defaults.
type BufferOptions struct {
	MaxTurns  int
	RedactPII bool
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// Buffer keeps a bounded, ordered window of recent turns per user on top of a
// Store. Eviction is write-triggered: every SaveMessage trims the user's log
// back to MaxTurns before returning.
type Buffer struct {
	store    Store
	maxTurns int
	redact   bool
	locks    *userLocks
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func NewBuffer(store Store, opts BufferOptions) *Buffer {
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Buffer{
		store:    store,
		maxTurns: opts.MaxTurns,
		redact:   opts.RedactPII,
		locks:    newUserLocks(),
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

func (b *Buffer) MaxTurns() int { return b.maxTurns }

// GetConversation returns up to MaxTurns turns for the user, oldest first.
// Rows without text content are dropped. The result is never nil.
func (b *Buffer) GetConversation(ctx context.Context, userID string) ([]Message, error) {
	records, err := b.store.OldestTurns(ctx, userID, b.maxTurns)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	history := make([]Message, 0, len(records))
	for _, r := range records {
		if r.Content == nil {
			b.logger.Debug("dropping non-text turn", zap.String("user_id", userID), zap.String("turn_id", r.ID))
			continue
		}
		history = append(history, Message{Role: r.Role, Content: *r.Content})
	}
	return history, nil
}

// SaveMessage appends one turn and evicts everything older than the newest
// MaxTurns turns in a single batch delete. Writes for the same user are
// serialized so the window never exceeds MaxTurns once SaveMessage returns.
func (b *Buffer) SaveMessage(ctx context.Context, userID, role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("save message: %w: %q", ErrInvalidRole, role)
	}
	if b.redact {
		content, _ = policy.RedactPII(content)
	}

	unlock := b.locks.lock(userID)
	defer unlock()

	if _, err := b.store.InsertTurn(ctx, Turn{UserID: userID, Role: role, Content: content}); err != nil {
		return fmt.Errorf("save message: %w", err)
	}

	ids, err := b.store.TurnIDsNewestFirst(ctx, userID)
	if err != nil {
		return fmt.Errorf("list turn ids: %w", err)
	}
	evicted := 0
	if len(ids) > b.maxTurns {
		stale := ids[b.maxTurns:]
		if err := b.store.DeleteTurns(ctx, stale); err != nil {
			return fmt.Errorf("evict turns: %w", err)
		}
		evicted = len(stale)
		b.logger.Debug("evicted turns", zap.String("user_id", userID), zap.Int("count", evicted))
	}
	b.metrics.ObserveMemoryWrite(evicted)
	return nil
}

// Clear removes the user's whole window.
func (b *Buffer) Clear(ctx context.Context, userID string) error {
	unlock := b.locks.lock(userID)
	defer unlock()
	if err := b.store.DeleteUserTurns(ctx, userID); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}

// userLocks hands out one mutex per user id and forgets it once no caller holds it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
