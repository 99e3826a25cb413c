package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const inboxSize = 256

var (
	ErrSessionClosed = errors.New("session closed")
	ErrInboxFull     = errors.New("session input buffer full")
)

// InputKind tags an Input.
type InputKind string

const (
	InputPointer InputKind = "pointer"
	InputClick   InputKind = "click"
	InputKey     InputKind = "key"
	InputForce   InputKind = "force"
	InputMode    InputKind = "mode"
)

// Input is a player action queued for the next tick.
type Input struct {
	Kind   InputKind   `json:"type" msgpack:"type"`
	X      float64     `json:"x,omitempty" msgpack:"x,omitempty"`
	Y      float64     `json:"y,omitempty" msgpack:"y,omitempty"`
	Button MouseButton `json:"button,omitempty" msgpack:"button,omitempty"`
	Key    Key         `json:"key,omitempty" msgpack:"key,omitempty"`
	Up     bool        `json:"up,omitempty" msgpack:"up,omitempty"`
	Down   bool        `json:"down,omitempty" msgpack:"down,omitempty"`
	Mode   Mode        `json:"mode,omitempty" msgpack:"mode,omitempty"`
}

// Apply hands the input to s.
func (in Input) Apply(s *Session) error {
	switch in.Kind {
	case InputPointer:
		s.PointerMove(Vec2{X: in.X, Y: in.Y})
	case InputClick:
		return s.Click(Vec2{X: in.X, Y: in.Y}, in.Button)
	case InputKey:
		return s.PressKey(in.Key)
	case InputForce:
		s.SetForceKeys(in.Up, in.Down)
	case InputMode:
		return s.SelectMode(in.Mode)
	default:
		return errors.New("unknown input type: " + string(in.Kind))
	}
	return nil
}

// Runner owns a Session and is the only goroutine that touches it. Input
// arrives on a buffered inbox and is applied at the start of the next tick;
// snapshots leave through subscriber channels that always hold the newest.
type Runner struct {
	session  *Session
	inbox    chan Input
	tickRate int
	log      *zap.Logger

	mu      sync.RWMutex
	subs    map[int]chan Snapshot
	nextSub int
	latest  Snapshot
	onTick  func(Snapshot)

	done      chan struct{}
	closeOnce sync.Once
}

func NewRunner(s *Session, tickRate int, log *zap.Logger) *Runner {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		session:  s,
		inbox:    make(chan Input, inboxSize),
		tickRate: tickRate,
		log:      log.With(zap.String("session", s.ID)),
		subs:     make(map[int]chan Snapshot),
		latest:   s.Snapshot(),
		done:     make(chan struct{}),
	}
}

func (r *Runner) ID() string { return r.session.ID }

// TickInterval is the wall-clock length of one tick.
func (r *Runner) TickInterval() time.Duration {
	return time.Second / time.Duration(r.tickRate)
}

// OnTick registers a hook called on the runner goroutine after every tick.
// It must not block.
func (r *Runner) OnTick(fn func(Snapshot)) {
	r.mu.Lock()
	r.onTick = fn
	r.mu.Unlock()
}

// Send queues in for the next tick without blocking.
func (r *Runner) Send(in Input) error {
	select {
	case <-r.done:
		return ErrSessionClosed
	default:
	}
	select {
	case r.inbox <- in:
		return nil
	default:
		return ErrInboxFull
	}
}

// Subscribe returns a channel of snapshots and a function to stop them.
func (r *Runner) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	r.mu.Lock()
	ch <- r.latest
	select {
	case <-r.done:
		// closed runner: the last snapshot, then nothing
		close(ch)
		r.mu.Unlock()
		return ch, func() {}
	default:
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			if _, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(ch)
			}
			r.mu.Unlock()
		})
	}
}

// Latest is the snapshot from the most recent tick.
func (r *Runner) Latest() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Done is closed once the runner has stopped.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Run ticks the session until ctx is cancelled or Close is called.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.TickInterval())
	defer ticker.Stop()
	defer r.Close()

	r.log.Info("runner started", zap.Int("tick_rate", r.tickRate))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("runner stopping", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-r.done:
			return nil
		case <-ticker.C:
			r.Step(r.TickInterval())
		}
	}
}

// Step drains the inbox, ticks once and publishes the result. Run calls it
// on every tick; it is exported for callers that drive time themselves.
func (r *Runner) Step(dt time.Duration) Snapshot {
	r.drain()
	r.session.Tick(dt)
	snap := r.session.Snapshot()

	r.mu.Lock()
	r.latest = snap
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	hook := r.onTick
	r.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return snap
}

func (r *Runner) drain() {
	for {
		select {
		case in := <-r.inbox:
			if err := in.Apply(r.session); err != nil {
				r.log.Debug("input rejected", zap.String("type", string(in.Kind)), zap.Error(err))
			}
		default:
			return
		}
	}
}

// Close stops the runner and every subscription. It is safe to call twice.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.mu.Lock()
		for id, ch := range r.subs {
			delete(r.subs, id)
			close(ch)
		}
		r.mu.Unlock()
	})
}

// Session gives direct access for callers that already own the runner's
// goroutine, such as tests.
func (r *Runner) Session() *Session { return r.session }
