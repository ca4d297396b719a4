// Package payment drives the user-visible multi-step unlock for one
// category: connect, switch network, build and sign the authorization,
// submit the payment proof, cache the unlocked content.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	terminal "github.com/0xmeta/terminal-go"
	"github.com/0xmeta/terminal-go/eip3009"
	"github.com/0xmeta/terminal-go/gateway"
	"github.com/0xmeta/terminal-go/unlock"
	"github.com/0xmeta/terminal-go/wallet"
)

// ErrAttemptInFlight is returned when a second unlock is requested for a
// category whose previous attempt has not finished.
var ErrAttemptInFlight = errors.New("payment attempt already in flight for category")

// DefaultResetDelay is how long an errored attempt stays visible before the
// status reverts to a retryable idle state.
const DefaultResetDelay = 3 * time.Second

// StatusUpdate is one progress event of a payment attempt. The status and
// message pair is the sole channel for conveying progress and failure to
// the interface layer.
type StatusUpdate struct {
	AttemptID uuid.UUID
	Category  string
	Status    terminal.PaymentStatus
	Message   string
}

// StatusFunc observes status updates. Called synchronously from the
// attempt's goroutine; implementations should return quickly.
type StatusFunc func(StatusUpdate)

// Gateway is the orchestrator's view of the network boundary.
type Gateway interface {
	GetConfig(ctx context.Context) (terminal.NetworkConfig, error)
	GetNews(ctx context.Context, category string, payload terminal.PaymentPayload) (terminal.NewsResponse, error)
}

// AuthorizationBuilder produces a signed transfer authorization.
type AuthorizationBuilder interface {
	Build(ctx context.Context, cfg terminal.NetworkConfig, payer string) (terminal.Authorization, string, error)
}

// Orchestrator sequences connect → authorize → submit → unlock as a single
// operation with observable status. It enforces at most one outstanding
// attempt per category and never retries: a failed attempt is abandoned and
// the next one starts from scratch with a fresh nonce.
type Orchestrator struct {
	connector *wallet.Connector
	builder   AuthorizationBuilder
	gateway   Gateway
	cache     *unlock.Cache

	onStatus   StatusFunc
	log        *zap.Logger
	resetDelay time.Duration
	now        func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
	cfg      *terminal.NetworkConfig
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithStatusFunc sets the status observer.
func WithStatusFunc(fn StatusFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.onStatus = fn
	}
}

// WithLogger sets the orchestrator's logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithResetDelay overrides how long an error status lingers before the
// attempt reverts to idle. Zero disables the deferred reset.
func WithResetDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.resetDelay = d
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithNetworkConfig seeds the session configuration, skipping the lazy
// fetch for hosts that already loaded it.
func WithNetworkConfig(cfg terminal.NetworkConfig) OrchestratorOption {
	return func(o *Orchestrator) {
		o.cfg = &cfg
	}
}

// NewOrchestrator wires the unlock pipeline together.
func NewOrchestrator(
	connector *wallet.Connector,
	builder AuthorizationBuilder,
	gw Gateway,
	cache *unlock.Cache,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		connector:  connector,
		builder:    builder,
		gateway:    gw,
		cache:      cache,
		log:        zap.NewNop(),
		resetDelay: DefaultResetDelay,
		now:        time.Now,
		inflight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Unlock runs the full payment sequence for one category and returns the
// normalized items on success. The sequence is strictly linear; the first
// error stops it and no partial progress is kept; a retry needs a whole
// new attempt, signature included.
func (o *Orchestrator) Unlock(ctx context.Context, categoryID string) ([]terminal.NewsItem, error) {
	if !o.acquire(categoryID) {
		return nil, ErrAttemptInFlight
	}
	defer o.release(categoryID)

	attempt := &attemptState{
		id:       uuid.New(),
		category: categoryID,
		tracker:  terminal.NewStatusTracker(),
	}

	items, err := o.run(ctx, attempt)
	if err != nil {
		o.fail(attempt, err)
		return nil, err
	}
	return items, nil
}

// InFlight reports whether an attempt is outstanding for the category.
func (o *Orchestrator) InFlight(categoryID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[categoryID]
	return ok
}

type attemptState struct {
	id       uuid.UUID
	category string
	tracker  *terminal.StatusTracker
}

func (o *Orchestrator) run(ctx context.Context, attempt *attemptState) ([]terminal.NewsItem, error) {
	o.advance(attempt, terminal.StatusAuthorizing, "creating transfer authorization")

	cfg, err := o.config(ctx)
	if err != nil {
		return nil, err
	}

	if !o.connector.IsConnected() {
		if _, err := o.connector.Connect(ctx); err != nil {
			return nil, err
		}
	}
	if err := o.connector.SwitchNetwork(ctx, cfg); err != nil {
		return nil, err
	}

	auth, signature, err := o.builder.Build(ctx, cfg, o.connector.Address())
	if err != nil {
		return nil, err
	}

	payload := terminal.PaymentPayload{
		X402Version: terminal.ProtocolVersion,
		Scheme:      terminal.SchemeExact,
		Network:     cfg.Network,
		Payload: terminal.ExactPayload{
			Authorization: auth,
			Signature:     signature,
		},
	}

	// Two labels, one request: the gateway verifies and settles in a
	// single round trip, the split exists for progressive feedback only.
	o.advance(attempt, terminal.StatusVerifying, "submitting payment proof")
	o.advance(attempt, terminal.StatusSettling, "verifying and settling payment")

	resp, err := o.gateway.GetNews(ctx, attempt.category, payload)
	if err != nil {
		return nil, err
	}

	items := gateway.Normalize(attempt.category, resp, o.now())
	if err := o.cache.Put(attempt.category, items); err != nil {
		return nil, fmt.Errorf("failed to cache unlocked content: %w", err)
	}

	o.advance(attempt, terminal.StatusComplete, "content unlocked")
	o.log.Info("category unlocked",
		zap.String("attempt", attempt.id.String()),
		zap.String("category", attempt.category),
		zap.Int("items", len(items)))
	return items, nil
}

// config fetches the network configuration once and reuses it for the rest
// of the session.
func (o *Orchestrator) config(ctx context.Context) (terminal.NetworkConfig, error) {
	o.mu.Lock()
	if o.cfg != nil {
		cfg := *o.cfg
		o.mu.Unlock()
		return cfg, nil
	}
	o.mu.Unlock()

	cfg, err := o.gateway.GetConfig(ctx)
	if err != nil {
		return terminal.NetworkConfig{}, err
	}

	o.mu.Lock()
	if o.cfg == nil {
		o.cfg = &cfg
	}
	cfg = *o.cfg
	o.mu.Unlock()
	return cfg, nil
}

func (o *Orchestrator) advance(attempt *attemptState, status terminal.PaymentStatus, message string) {
	if err := attempt.tracker.Transition(status); err != nil {
		// A broken transition is a programming error; surface loudly in
		// logs but keep the attempt moving.
		o.log.Error("status transition rejected", zap.Error(err))
		return
	}
	o.emit(attempt, status, message)
}

func (o *Orchestrator) fail(attempt *attemptState, err error) {
	message := err.Error()
	var pe *terminal.PaymentError
	if errors.As(err, &pe) {
		message = pe.Message
	}

	if attempt.tracker.Current().CanTransition(terminal.StatusError) {
		_ = attempt.tracker.Transition(terminal.StatusError)
		o.emit(attempt, terminal.StatusError, message)
	}
	o.log.Warn("payment attempt failed",
		zap.String("attempt", attempt.id.String()),
		zap.String("category", attempt.category),
		zap.String("code", terminal.CodeOf(err)),
		zap.Error(err))

	// Revert to a retryable idle state after a short delay rather than
	// sticking in a locked failure state.
	if o.resetDelay > 0 {
		time.AfterFunc(o.resetDelay, func() {
			if err := attempt.tracker.Transition(terminal.StatusIdle); err == nil {
				o.emit(attempt, terminal.StatusIdle, "")
			}
		})
	}
}

func (o *Orchestrator) emit(attempt *attemptState, status terminal.PaymentStatus, message string) {
	if o.onStatus == nil {
		return
	}
	o.onStatus(StatusUpdate{
		AttemptID: attempt.id,
		Category:  attempt.category,
		Status:    status,
		Message:   message,
	})
}

func (o *Orchestrator) acquire(categoryID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.inflight[categoryID]; ok {
		return false
	}
	o.inflight[categoryID] = struct{}{}
	return true
}

func (o *Orchestrator) release(categoryID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, categoryID)
}

var _ AuthorizationBuilder = (*eip3009.Builder)(nil)
var _ Gateway = (*gateway.Client)(nil)
