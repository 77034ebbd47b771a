package music

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// recentGrace is how long after a session stops that skip requests
	// are still answered gracefully instead of with an error.
	recentGrace = time.Minute
	// recentPurge is how long stopped-guild records are kept at all.
	recentPurge = 10 * time.Minute
)

// Deps carries the external collaborators a Manager wires into every
// session it creates.
type Deps struct {
	Gateway  Gateway
	Notifier Notifier
	Resolver Resolver
	// NewEngine builds a playback engine for a guild, delivering its
	// callbacks to the given listener.
	NewEngine func(guildID string, l EngineListener) Engine
	// Config loads per-guild settings; nil means defaults everywhere.
	Config func(guildID string) GuildConfig
}

// Manager is the registry of live sessions, at most one per guild, plus a
// short memory of recently stopped ones.
type Manager struct {
	deps    Deps
	log     zerolog.Logger
	metrics *Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
	recent   map[string]time.Time
}

// NewManager builds an empty registry.
func NewManager(deps Deps, metrics *Metrics, log zerolog.Logger) *Manager {
	return &Manager{
		deps:     deps,
		log:      log.With().Str("component", "music").Logger(),
		metrics:  metrics,
		sessions: make(map[string]*Session),
		recent:   make(map[string]time.Time),
	}
}

// Resolver returns the track resolver sessions share.
func (m *Manager) Resolver() Resolver { return m.deps.Resolver }

// Get returns the guild's session if one is live.
func (m *Manager) Get(guildID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	return s, ok
}

// Has reports whether the guild has a live session.
func (m *Manager) Has(guildID string) bool {
	_, ok := m.Get(guildID)
	return ok
}

// Create builds a session for the guild, failing when one already lives.
func (m *Manager) Create(guildID string) (*Session, error) {
	m.mu.Lock()
	if _, ok := m.sessions[guildID]; ok {
		m.mu.Unlock()
		return nil, ErrSessionExists
	}
	s := newSession(m, guildID)
	m.sessions[guildID] = s
	// A live new session supersedes any just-stopped memory of the guild.
	delete(m.recent, guildID)
	n := len(m.sessions)
	m.mu.Unlock()

	m.log.Info().Str("guild", guildID).Int("sessions", n).Msg("session created")
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(n))
	}
	time.AfterFunc(startupCheckDelay, s.Prompt)
	return s, nil
}

// GetOrCreate returns the guild's session, creating one if needed. A new
// session gets a delayed first idle check so a creation that never plays
// anything still gets cleaned up before the periodic sweep notices it.
func (m *Manager) GetOrCreate(guildID string) *Session {
	for {
		if s, ok := m.Get(guildID); ok {
			return s
		}
		if s, err := m.Create(guildID); err == nil {
			return s
		}
	}
}

// List returns a snapshot of all live sessions.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Remove drops the session from the registry. A newer session for the
// same guild is left alone.
func (m *Manager) Remove(s *Session) {
	m.mu.Lock()
	if cur, ok := m.sessions[s.guildID]; ok && cur == s {
		delete(m.sessions, s.guildID)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.log.Info().Str("guild", s.guildID).Int("sessions", n).Msg("session removed")
	if m.metrics != nil {
		m.metrics.ActiveSessions.Set(float64(n))
	}
}

// MarkRecent records that the guild's session just stopped.
func (m *Manager) MarkRecent(guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent[guildID] = time.Now()
}

// RecentlyStopped reports whether the guild's session ended within the
// grace window. Commands use it to answer "it just finished" instead of
// "nothing is playing".
func (m *Manager) RecentlyStopped(guildID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.recent[guildID]
	return ok && time.Since(t) < recentGrace
}

// purgeRecent forgets stopped-guild records past their keep window.
func (m *Manager) purgeRecent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for guildID, t := range m.recent {
		if time.Since(t) > recentPurge {
			delete(m.recent, guildID)
		}
	}
}

// StopAll shuts down every live session. Used when the bot exits.
func (m *Manager) StopAll() {
	for _, s := range m.List() {
		s.ShutdownNow(true)
	}
}

func (m *Manager) addPlayed() {
	if m.metrics != nil {
		m.metrics.TracksPlayed.Inc()
	}
}

func (m *Manager) addQueued() {
	if m.metrics != nil {
		m.metrics.TracksQueued.Inc()
	}
}
