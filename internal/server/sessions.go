package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/lectura/internal/quiz"
)

// Registry holds live quiz sessions in memory. Sessions idle for longer
// than the TTL are abandoned and dropped by Sweep.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*session
}

type session struct {
	ctrl     *quiz.Controller
	lastSeen time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry(ttl time.Duration, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{ttl: ttl, now: now, sessions: make(map[string]*session)}
}

// Add registers ctrl under its session id.
func (r *Registry) Add(ctrl *quiz.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[ctrl.SessionID()] = &session{ctrl: ctrl, lastSeen: r.now()}
}

// Get returns the controller for id and refreshes its idle timer.
func (r *Registry) Get(id string) (*quiz.Controller, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	if r.expired(s) {
		delete(r.sessions, id)
		r.mu.Unlock()
		s.ctrl.Abandon()
		return nil, false
	}
	s.lastSeen = r.now()
	r.mu.Unlock()
	return s.ctrl, true
}

// Remove abandons and drops the session. It reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.ctrl.Abandon()
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep abandons expired sessions and returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	var expired []*quiz.Controller
	for id, s := range r.sessions {
		if r.expired(s) {
			expired = append(expired, s.ctrl)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Abandon()
	}
	return len(expired)
}

// RunJanitor sweeps every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("expired quiz sessions", "count", n)
			}
		}
	}
}

// AbandonAll drops every session, used on shutdown.
func (r *Registry) AbandonAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()
	for _, s := range all {
		s.ctrl.Abandon()
	}
}

func (r *Registry) expired(s *session) bool {
	return r.ttl > 0 && r.now().Sub(s.lastSeen) > r.ttl
}
