package session

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one browser's to-do list.
type Session struct {
	ID        string
	Store     *todo.Store
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	closers  []func()
	closed   bool
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// OnClose registers fn to run once when the session is evicted. On an
// already evicted session fn runs right away.
func (s *Session) OnClose(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for _, fn := range closers {
		fn()
	}
}

type Options struct {
	// TTL is how long an idle session survives. Zero or negative means
	// forever.
	TTL time.Duration
	// MaxSessions caps live sessions; the longest idle one is evicted
	// to make room. Zero or negative means no cap.
	MaxSessions int
	Clock       clock.Clock
	Logger      *log.Logger

	// OnCreate runs for every new session before it is handed out.
	OnCreate func(*Session)
	// OnEvict runs for every session dropped by expiry or the cap,
	// before the session's OnClose funcs.
	OnEvict func(*Session)
}

// Registry holds the live sessions of the process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
}

func NewRegistry(opts Options) *Registry {
	opts.Clock = clock.OrReal(opts.Clock)
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Registry{
		sessions: map[string]*Session{},
		opts:     opts,
	}
}

// Create starts a session with an empty list.
func (r *Registry) Create() *Session {
	now := r.opts.Clock.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Store:     todo.NewStore(r.opts.Clock),
		CreatedAt: now,
		lastSeen:  now,
	}
	if r.opts.OnCreate != nil {
		r.opts.OnCreate(sess)
	}

	r.mu.Lock()
	evicted := r.sweepLocked(now)
	if r.opts.MaxSessions > 0 {
		evicted = append(evicted, r.evictOverflowLocked(r.opts.MaxSessions-1)...)
	}
	r.sessions[sess.ID] = sess
	total := len(r.sessions)
	r.mu.Unlock()

	r.evicted(evicted)
	r.opts.Logger.Debug("session_created", "session", sess.ID, "sessions", total)
	return sess
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}
	now := r.opts.Clock.Now()

	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok && r.expired(sess, now) {
		delete(r.sessions, id)
		r.mu.Unlock()
		r.evicted([]*Session{sess})
		return nil, ErrSessionNotFound
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Sweep drops expired sessions and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	evicted := r.sweepLocked(r.opts.Clock.Now())
	r.mu.Unlock()
	r.evicted(evicted)
	return len(evicted)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	if r.opts.TTL <= 0 {
		return false
	}
	return now.Sub(s.LastSeen()) > r.opts.TTL
}

func (r *Registry) sweepLocked(now time.Time) []*Session {
	var out []*Session
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			out = append(out, s)
		}
	}
	return out
}

// evictOverflowLocked trims the registry down to keep sessions, oldest
// idle first.
func (r *Registry) evictOverflowLocked(keep int) []*Session {
	if keep < 0 {
		keep = 0
	}
	if len(r.sessions) <= keep {
		return nil
	}
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastSeen().Before(all[j].LastSeen())
	})
	drop := all[:len(all)-keep]
	for _, s := range drop {
		delete(r.sessions, s.ID)
	}
	return drop
}

func (r *Registry) evicted(sessions []*Session) {
	for _, s := range sessions {
		r.opts.Logger.Debug("session_evicted", "session", s.ID)
		if r.opts.OnEvict != nil {
			r.opts.OnEvict(s)
		}
		s.close()
	}
}
