package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playmatatu/neonsnooker/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idleSetKey       = "session_idle"
	EventsChannel    = "session_events"
	snapshotInterval = time.Second
	defaultTTL       = time.Hour
	recordTimeout    = 5 * time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Recorder persists session history. A nil Recorder disables it.
type Recorder interface {
	SessionStarted(ctx context.Context, s models.SnookerSession) error
	SessionEnded(ctx context.Context, id, reason string, powerMode bool, at time.Time) error
	BallPotted(ctx context.Context, e models.PotEvent) error
	Summary(ctx context.Context, id string) (*models.SessionSummary, error)
}

// ManagerOptions configures the session registry.
type ManagerOptions struct {
	FrameWidth  float64
	FrameHeight float64
	TickRate    int
	MaxSessions int
	SessionTTL  time.Duration
	IdleTimeout time.Duration
	Tuning      Tuning
	NewWorld    func(Tuning) PhysicsWorld
}

// ManagedSession is a live session and its bookkeeping.
type ManagedSession struct {
	ID        string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`

	runner   *Runner
	cancel   context.CancelFunc
	lastSave time.Time
}

func (ms *ManagedSession) Runner() *Runner { return ms.runner }

// SessionManager keeps every live session, persists snapshots to redis and
// records pots through the Recorder.
type SessionManager struct {
	sessions map[string]*ManagedSession
	rdb      *redis.Client
	recorder Recorder
	opts     ManagerOptions
	log      *zap.Logger
	mu       sync.RWMutex
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager sets up the global session manager
func InitializeManager(rdb *redis.Client, rec Recorder, opts ManagerOptions, log *zap.Logger) {
	Manager = NewSessionManager(rdb, rec, opts, log)
}

func NewSessionManager(rdb *redis.Client, rec Recorder, opts ManagerOptions, log *zap.Logger) *SessionManager {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*ManagedSession),
		rdb:      rdb,
		recorder: rec,
		opts:     opts,
		log:      log.Named("manager"),
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	return "sess_" + generateToken(8)
}

// Create starts a new session in mode and its runner goroutine.
func (m *SessionManager) Create(ctx context.Context, mode Mode) (*ManagedSession, error) {
	if mode == 0 {
		mode = ModeStandard
	}
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if m.opts.NewWorld == nil {
		return nil, errors.New("session manager has no physics world factory")
	}

	m.mu.Lock()
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	id := generateSessionID()
	tuning := m.opts.Tuning
	session, err := NewSession(SessionOptions{
		ID:          id,
		FrameWidth:  m.opts.FrameWidth,
		FrameHeight: m.opts.FrameHeight,
		Mode:        mode,
		World:       m.opts.NewWorld(tuning),
		Tuning:      &tuning,
		Logger:      m.log,
	})
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := time.Now()
	runCtx, cancel := context.WithCancel(context.Background())
	ms := &ManagedSession{
		ID:        id,
		Status:    StatusActive,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.SessionTTL),
		runner:    NewRunner(session, m.opts.TickRate, m.log),
		cancel:    cancel,
	}
	ms.runner.OnTick(m.afterTick(ms))
	m.sessions[id] = ms
	m.mu.Unlock()

	go ms.runner.Run(runCtx)

	m.log.Info("session started", zap.String("session", id), zap.Int("mode", int(mode)))
	if m.recorder != nil {
		row := models.SnookerSession{ID: id, Mode: int(mode), StartedAt: now}
		if err := m.recorder.SessionStarted(ctx, row); err != nil {
			m.log.Warn("record session start failed", zap.String("session", id), zap.Error(err))
		}
	}
	m.Touch(ctx, id)
	return ms, nil
}

// afterTick runs on the session's runner goroutine. Anything slow goes to
// its own goroutine.
func (m *SessionManager) afterTick(ms *ManagedSession) func(Snapshot) {
	return func(snap Snapshot) {
		for _, e := range snap.Events {
			if e.Type != EventPocketed {
				continue
			}
			row := models.PotEvent{
				SessionID:           ms.ID,
				BallColor:           string(e.Color),
				BallRole:            e.Role,
				Foul:                e.Foul,
				ConsecutiveColoured: e.Streak,
				CreatedAt:           time.Now(),
			}
			go m.recordPot(row)
		}
		if time.Since(ms.lastSave) >= snapshotInterval {
			ms.lastSave = time.Now()
			go m.saveSnapshotToRedis(snap)
		}
	}
}

func (m *SessionManager) recordPot(row models.PotEvent) {
	if m.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := m.recorder.BallPotted(ctx, row); err != nil {
		m.log.Warn("record pot failed", zap.String("session", row.SessionID), zap.Error(err))
	}
}

// Get returns a live session.
func (m *SessionManager) Get(id string) (*ManagedSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ms, nil
}

// Snapshot returns the latest state of a session, falling back to the copy
// kept in redis once the session is gone from memory.
func (m *SessionManager) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	if ms, err := m.Get(id); err == nil {
		snap := ms.runner.Latest()
		return &snap, nil
	}
	return m.loadSnapshotFromRedis(ctx, id)
}

// Summary returns the recorded pot history of a session.
func (m *SessionManager) Summary(ctx context.Context, id string) (*models.SessionSummary, error) {
	if m.recorder == nil {
		return nil, errors.New("session history is not recorded")
	}
	return m.recorder.Summary(ctx, id)
}

// Send queues player input for a session and refreshes its idle deadline.
func (m *SessionManager) Send(ctx context.Context, id string, in Input) error {
	ms, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := ms.runner.Send(in); err != nil {
		return err
	}
	m.Touch(ctx, id)
	return nil
}

// Touch pushes the idle deadline of a session forward.
func (m *SessionManager) Touch(ctx context.Context, id string) {
	if m.rdb == nil || m.opts.IdleTimeout <= 0 {
		return
	}
	deadline := time.Now().Add(m.opts.IdleTimeout).Unix()
	if err := m.rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(deadline), Member: id}).Err(); err != nil {
		m.log.Debug("idle touch failed", zap.String("session", id), zap.Error(err))
	}
}

// Close stops a session, saves its final snapshot and announces the close
// on the events channel.
func (m *SessionManager) Close(ctx context.Context, id, reason string) error {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	ms.Status = StatusClosed
	m.mu.Unlock()

	ms.cancel()
	<-ms.runner.Done()
	final := ms.runner.Latest()
	ms.runner.Session().Close()

	if err := m.saveSnapshotToRedis(final); err != nil {
		m.log.Warn("save final snapshot failed", zap.String("session", id), zap.Error(err))
	}
	if m.rdb != nil {
		m.rdb.ZRem(ctx, idleSetKey, id)
	}
	if m.recorder != nil {
		if err := m.recorder.SessionEnded(ctx, id, reason, final.PowerMode, time.Now()); err != nil {
			m.log.Warn("record session end failed", zap.String("session", id), zap.Error(err))
		}
	}
	m.publishClosed(ctx, id, reason)

	m.log.Info("session closed", zap.String("session", id), zap.String("reason", reason))
	return nil
}

// Shutdown closes every live session.
func (m *SessionManager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		if err := m.Close(ctx, id, EndReasonShutdown); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.log.Warn("shutdown close failed", zap.String("session", id), zap.Error(err))
		}
	}
}

// Expired lists sessions whose ExpiresAt is at or before now.
func (m *SessionManager) Expired(now time.Time) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, ms := range m.sessions {
		if !ms.ExpiresAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetActiveSessionCount returns the number of live sessions
func (m *SessionManager) GetActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SessionClosedEvent is published on the events channel when a session ends.
type SessionClosedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

func (m *SessionManager) publishClosed(ctx context.Context, id, reason string) {
	if m.rdb == nil {
		return
	}
	payload := SessionClosedEvent{
		Type:      "session_closed",
		SessionID: id,
		Reason:    reason,
		Message:   "Session closed (" + reason + ")",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		m.log.Warn("marshal session_closed failed", zap.Error(err))
		return
	}
	n, err := m.rdb.Publish(ctx, EventsChannel, b).Result()
	if err != nil {
		m.log.Warn("publish session_closed failed", zap.String("session", id), zap.Error(err))
		return
	}
	m.log.Debug("published session_closed", zap.String("session", id), zap.Int64("subscribers", n))
}

func snapshotKey(id string) string {
	return "session:" + id + ":state"
}

// saveSnapshotToRedis persists the latest snapshot to Redis
func (m *SessionManager) saveSnapshotToRedis(snap Snapshot) error {
	if m.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return m.rdb.SetEx(context.Background(), snapshotKey(snap.SessionID), data, m.opts.SessionTTL).Err()
}

// loadSnapshotFromRedis restores the last saved snapshot of a session
func (m *SessionManager) loadSnapshotFromRedis(ctx context.Context, id string) (*Snapshot, error) {
	if m.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := m.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
