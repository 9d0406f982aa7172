package suspension

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/amats-service/internal/domain"
)

// ErrPresenterClosed is returned when a countdown is opened after Close.
var ErrPresenterClosed = errors.New("countdown presenter closed")

// ExpireFunc is invoked once when a countdown reaches zero. openedAt is when the
// countdown was opened, so the callback can tell whether the suspension it counted
// down has since been replaced.
type ExpireFunc func(ctx context.Context, email string, openedAt time.Time) error

// CountdownState is the snapshot of a countdown dialog. Token is handed to the client
// that opened the dialog and is required to poll or dismiss it.
type CountdownState struct {
	Email       string
	SuspendedBy string
	Minutes     int
	Seconds     int
	State       State
	Token       string
}

// Display renders the remaining time as mm:ss.
func (s CountdownState) Display() string {
	c := Countdown{minutes: s.Minutes, seconds: s.Seconds}
	return c.Display()
}

type session struct {
	email     string
	actor     string
	token     string
	openedAt  time.Time
	countdown *Countdown
	cancel    context.CancelFunc
}

// Presenter runs at most one ticking countdown per dialog key (the account email).
type Presenter struct {
	interval time.Duration
	onExpire ExpireFunc
	logger   *zap.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
	wg       sync.WaitGroup
}

// NewPresenter builds a presenter ticking every interval (one second in production).
func NewPresenter(interval time.Duration, onExpire ExpireFunc, logger *zap.Logger) *Presenter {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Presenter{
		interval:   interval,
		onExpire:   onExpire,
		logger:     logger,
		baseCtx:    ctx,
		baseCancel: cancel,
		sessions:   make(map[string]*session),
	}
}

// Open starts a countdown for email, cancelling any countdown already running for it.
// If the initial time is zero the expiry callback runs before Open returns.
func (p *Presenter) Open(email, suspendedBy string, minutes, seconds int) (CountdownState, error) {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return CountdownState{}, ErrPresenterClosed
	}
	if prev, ok := p.sessions[email]; ok {
		prev.cancel()
		delete(p.sessions, email)
	}

	s := &session{
		email:     email,
		actor:     suspendedBy,
		token:     uuid.NewString(),
		openedAt:  time.Now(),
		countdown: NewCountdown(),
	}
	if s.countdown.Start(minutes, seconds) == StateExpired {
		state := s.snapshot()
		p.mu.Unlock()
		p.expire(s)
		return state, nil
	}

	ctx, cancel := context.WithCancel(p.baseCtx)
	s.cancel = cancel
	p.sessions[email] = s
	p.wg.Add(1)
	state := s.snapshot()
	p.mu.Unlock()

	go p.run(ctx, s)
	p.logger.Debug("countdown opened",
		zap.String("email", email),
		zap.String("remaining", state.Display()))
	return state, nil
}

// Dismiss tears down the dialog for email. The suspension itself is left untouched.
func (p *Presenter) Dismiss(email string) bool {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[email]
	if !ok {
		return false
	}
	s.cancel()
	delete(p.sessions, email)
	return true
}

// Lookup returns the countdown for email only when token matches the one issued by Open.
func (p *Presenter) Lookup(email, token string) (CountdownState, bool) {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[email]
	if !ok || !s.owns(token) {
		return CountdownState{}, false
	}
	return s.snapshot(), true
}

// Release dismisses the countdown for email only when token matches.
func (p *Presenter) Release(email, token string) bool {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[email]
	if !ok || !s.owns(token) {
		return false
	}
	s.cancel()
	delete(p.sessions, email)
	return true
}

// Snapshot returns the current countdown for email, if one is running.
func (p *Presenter) Snapshot(email string) (CountdownState, bool) {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[email]
	if !ok {
		return CountdownState{}, false
	}
	return s.snapshot(), true
}

// Active returns the number of running countdowns.
func (p *Presenter) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close cancels every countdown and waits for their timers to stop.
func (p *Presenter) Close() {
	p.mu.Lock()
	p.closed = true
	for email, s := range p.sessions {
		s.cancel()
		delete(p.sessions, email)
	}
	p.mu.Unlock()

	p.baseCancel()
	p.wg.Wait()
}

func (p *Presenter) run(ctx context.Context, s *session) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			if ctx.Err() != nil {
				p.mu.Unlock()
				return
			}
			state := s.countdown.Tick()
			if state == StateExpired {
				if p.sessions[s.email] == s {
					delete(p.sessions, s.email)
				}
				s.cancel()
			}
			p.mu.Unlock()

			if state == StateExpired {
				p.expire(s)
				return
			}
		}
	}
}

func (p *Presenter) expire(s *session) {
	p.logger.Info("countdown expired", zap.String("email", s.email))
	if p.onExpire == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.onExpire(ctx, s.email, s.openedAt); err != nil {
		p.logger.Error("countdown expiry callback failed", zap.String("email", s.email), zap.Error(err))
	}
}

func (s *session) snapshot() CountdownState {
	m, sec := s.countdown.Remaining()
	return CountdownState{
		Email:       s.email,
		SuspendedBy: s.actor,
		Minutes:     m,
		Seconds:     sec,
		State:       s.countdown.State(),
		Token:       s.token,
	}
}

func (s *session) owns(token string) bool {
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}
