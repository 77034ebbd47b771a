package music

import "time"

// Engine callbacks and voice event handling. The engine calls these from
// its playback goroutine; the gateway calls HandleVoiceEvent from its
// event dispatch. Both race with commands, so the same rules apply:
// decide under the session mutex, act outside it.

// OnTrackStart resets the vote tally for the new track and records the
// play. If the track somehow remained queued it is removed here.
func (s *Session) OnTrackStart(t *Track) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.skips = make(map[string]struct{})
	s.queue.removeLocked(t.ID)
	channel := s.channelID
	s.mu.Unlock()

	s.manager.addPlayed()

	if s.gateway.SelfMuted(s.guildID) && s.gateway.CanSelfUnmute(s.guildID, channel) {
		_ = s.gateway.SelfUnmute(s.guildID)
	}
}

// OnTrackEnd advances the queue when the end reason allows it. Replaced
// and cleanup ends belong to whoever replaced the track or tore the
// engine down; reacting to them here would double-start.
func (s *Session) OnTrackEnd(t *Track, reason EndReason) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	if !reason.MayStartNext() && reason != EndStopped {
		s.mu.Unlock()
		return
	}
	if s.queue.lenLocked() == 0 {
		s.now = nil
		leaveQueued := s.leaveTimer != nil
		s.mu.Unlock()

		s.log.Debug().Str("reason", reason.String()).Msg("queue concluded")
		msg := "The queue has concluded."
		if leaveQueued {
			msg += " I will disconnect shortly."
		}
		s.send(msg)
		s.setPresence("")
		s.Prompt()
		return
	}
	if t != nil {
		s.queue.removeLocked(t.ID)
	}
	s.mu.Unlock()
	s.PlayNext()
}

// OnTrackException tells the guild why playback failed and drops the
// now-wrong presence title. Progression is left to the end callback the
// engine emits afterwards.
func (s *Session) OnTrackException(t *Track, err error) {
	s.log.Warn().Err(err).Str("track", t.ID).Msg("track playback failed")
	s.setPresence("")
	s.send(playbackFaultMessage(err))
}

// OnTrackStuck skips past a track the engine stopped making progress on.
// Starting the next track replaces the stuck one, so the replaced end
// event that follows is ignored and the queue advances exactly once.
func (s *Session) OnTrackStuck(t *Track, threshold time.Duration) {
	s.log.Warn().Str("track", t.ID).Dur("threshold", threshold).Msg("track stuck, skipping")
	s.send("That track got stuck; skipping it.")
	s.PlayNext()
}

// HandleVoiceEvent reacts to voice state changes in the session's guild.
func (s *Session) HandleVoiceEvent(ev VoiceEvent) {
	switch ev := ev.(type) {
	case SelfMoved:
		// Track where the platform put us even mid-shutdown, so later
		// leave and unmute calls target the right channel.
		s.mu.Lock()
		moved := s.channelID == ev.FromChannelID
		if moved {
			s.channelID = ev.ToChannelID
		}
		s.mu.Unlock()

		// Being dragged into an empty channel ends the session the same
		// way the last listener leaving does.
		if moved && !s.dormant() && s.ActiveListeners() == 0 {
			s.log.Info().Str("channel", ev.ToChannelID).Msg("moved to an empty channel, shutting down")
			s.StopTrack()
			s.Shutdown()
		}

	case ParticipantLeft:
		if s.dormant() || ev.ChannelID != s.Channel() {
			return
		}
		s.participantGone(ev.UserID)

	case ParticipantMoved:
		if s.dormant() {
			return
		}
		if channel := s.Channel(); ev.FromChannelID == channel && ev.ToChannelID != channel {
			s.participantGone(ev.UserID)
		}

	case SelfMuted:
		if s.dormant() || !ev.Muted {
			return
		}
		if s.gateway.CanSelfUnmute(s.guildID, s.Channel()) {
			_ = s.gateway.SelfUnmute(s.guildID)
			// The muted stretch already ruined the track; skip it.
			s.StopTrack()
			return
		}
		s.log.Info().Msg("muted without permission to unmute, shutting down")
		s.send("I've been muted and can't unmute myself; disconnecting.")
		s.ShutdownNow(true)

	case ParticipantDeafened:
		if s.dormant() || !ev.Deafened || ev.ChannelID != s.Channel() {
			return
		}
		s.removeSkip(ev.UserID)
		s.autoSkip()
	}
}

// dormant reports whether the session should ignore participant churn:
// it is already stopping or already queued to leave.
func (s *Session) dormant() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping || s.leaveTimer != nil
}

// participantGone handles a listener leaving the bound channel. An empty
// channel ends the session; otherwise the departure may tip the vote.
func (s *Session) participantGone(userID string) {
	if s.ActiveListeners() == 0 {
		s.log.Info().Msg("no listeners remain, shutting down")
		s.StopTrack()
		s.Shutdown()
		return
	}
	s.removeSkip(userID)
	s.autoSkip()
}

// autoSkip ends the current track when the remaining listeners' votes now
// meet the threshold.
func (s *Session) autoSkip() {
	if s.engine.Playing() == nil {
		return
	}
	if s.ShouldSkip() {
		s.send("The vote to skip has passed.")
		s.StopTrack()
	}
}
