package music

import (
	"context"
	"time"
)

const (
	checkerInitialDelay = 15 * time.Second
	checkerInterval     = time.Minute
)

// RunChecker sweeps the registry for sessions that should have stopped on
// their own but missed their trigger: empty channels, idle sessions and
// queues that stalled without a playing track. Runs until ctx is done.
func (m *Manager) RunChecker(ctx context.Context) {
	m.log.Info().Dur("interval", checkerInterval).Msg("session checker started")

	select {
	case <-ctx.Done():
		return
	case <-time.After(checkerInitialDelay):
	}

	ticker := time.NewTicker(checkerInterval)
	defer ticker.Stop()
	purge := time.NewTicker(recentPurge)
	defer purge.Stop()
	for {
		m.check()
		select {
		case <-ctx.Done():
			m.log.Info().Msg("session checker stopped")
			return
		case <-purge.C:
			m.purgeRecent()
		case <-ticker.C:
		}
	}
}

func (m *Manager) check() {
	// Voice connections no session tracks are leaks; drop them.
	for _, guildID := range m.deps.Gateway.VoiceGuilds() {
		if !m.Has(guildID) {
			m.log.Warn().Str("guild", guildID).Msg("orphaned voice connection, disconnecting")
			m.deps.Gateway.LeaveChannel(guildID)
		}
	}

	for _, s := range m.List() {
		if s.Stopping() || s.LeaveQueued() {
			continue
		}
		channel := s.Channel()
		if channel == "" {
			s.Prompt()
			continue
		}
		if !m.deps.Gateway.IsConnected(s.guildID) {
			m.log.Warn().Str("guild", s.guildID).Str("channel", channel).Msg("voice connection drifted, rejoining")
			if err := m.deps.Gateway.JoinChannel(s.guildID, channel); err != nil {
				m.log.Error().Err(err).Str("guild", s.guildID).Msg("rejoin failed")
			}
		}
		if s.ActiveListeners() == 0 {
			m.log.Info().Str("guild", s.guildID).Msg("checker found an empty channel")
			s.StopTrack()
			s.Shutdown()
			continue
		}
		if s.engine.Playing() != nil {
			continue
		}
		if s.QueueLen() == 0 {
			s.Prompt()
			continue
		}
		// A queued session with nothing playing lost a track-end event
		// somewhere; nudge it forward.
		m.log.Warn().Str("guild", s.guildID).Int("queued", s.QueueLen()).Msg("checker found a stalled queue")
		s.PlayNext()
	}
}
