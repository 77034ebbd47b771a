package music

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// leaveDelay is how long a blocked shutdown waits before retrying.
	leaveDelay = 5 * time.Minute
	// startupCheckDelay is how long after creation a session gets its
	// first idle check, in case the creating request never played anything.
	startupCheckDelay = 90 * time.Second
)

// Session is the per-guild playback state machine. It owns the queue, the
// currently playing item, skip votes and the scheduled-shutdown state, all
// guarded by one mutex. Commands, engine callbacks, voice events and the
// periodic checker all mutate it concurrently; decisions are made under
// the mutex, while engine and notifier calls happen outside it so the lock
// is never held across a blocking external call.
type Session struct {
	guildID string
	manager *Manager
	engine  Engine
	gateway Gateway
	notify  Notifier
	cfg     GuildConfig
	log     zerolog.Logger

	mu          sync.Mutex
	channelID   string
	queue       *Queue
	now         *QueueItem
	skips       map[string]struct{}
	stopping    bool
	leaveTimer  *time.Timer
	lastPlaying string
}

func newSession(m *Manager, guildID string) *Session {
	s := &Session{
		guildID: guildID,
		manager: m,
		gateway: m.deps.Gateway,
		notify:  m.deps.Notifier,
		skips:   make(map[string]struct{}),
		log:     m.log.With().Str("guild", guildID).Logger(),
	}
	s.queue = newSessionQueue(&s.mu)
	if m.deps.Config != nil {
		s.cfg = m.deps.Config(guildID)
	}
	s.engine = m.deps.NewEngine(guildID, s)
	if s.cfg.Volume > 0 {
		s.engine.SetVolume(s.cfg.Volume)
	}
	return s
}

// GuildID returns the guild this session serves.
func (s *Session) GuildID() string { return s.guildID }

// Config returns the per-guild configuration captured at creation.
func (s *Session) Config() GuildConfig { return s.cfg }

// Channel returns the bound voice channel, or "" when unbound.
func (s *Session) Channel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// Stopping reports whether the session has reached its terminal state.
func (s *Session) Stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// LeaveQueued reports whether a deferred shutdown is pending.
func (s *Session) LeaveQueued() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveTimer != nil
}

// NowPlaying returns the item the session considers current, or nil.
func (s *Session) NowPlaying() *QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// QueueItems returns a snapshot of the pending queue.
func (s *Session) QueueItems() []QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.itemsLocked()
}

// QueueLen returns the number of pending items.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.lenLocked()
}

// QueueFull reports whether the queue has reached QueueLimit.
func (s *Session) QueueFull() bool {
	return s.QueueLen() >= QueueLimit
}

// IsQueued reports whether the identifier is queued or currently playing.
func (s *Session) IsQueued(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now != nil && SameTrack(s.now.Track.ID, id) {
		return true
	}
	return s.queue.containsLocked(id)
}

// Duration returns the remaining play time: what is left of the current
// track plus the duration of everything queued behind it.
func (s *Session) Duration() time.Duration {
	var total time.Duration
	if t := s.engine.Playing(); t != nil {
		remaining := t.Duration - s.engine.Position()
		if remaining > 0 {
			total += remaining
		}
	}
	s.mu.Lock()
	total += s.queue.durationLocked()
	s.mu.Unlock()
	return total
}

// BindChannel points the session at a voice channel, releasing any previous
// binding first. A join refusal is session-terminating: the session tells
// the guild and shuts down.
func (s *Session) BindChannel(channelID string) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	old := s.channelID
	s.channelID = channelID
	s.mu.Unlock()

	s.log.Debug().Str("channel", channelID).Msg("binding voice channel")

	if old != "" && old != channelID && s.gateway.IsConnected(s.guildID) {
		s.gateway.LeaveChannel(s.guildID)
	}

	if err := s.gateway.JoinChannel(s.guildID, channelID); err != nil {
		s.log.Warn().Err(err).Str("channel", channelID).Msg("could not join voice channel, shutting down")
		s.send("I couldn't connect to the voice channel; aborting.")
		s.ShutdownNow(true)
		return err
	}

	if s.gateway.SelfMuted(s.guildID) && s.gateway.CanSelfUnmute(s.guildID, channelID) {
		_ = s.gateway.SelfUnmute(s.guildID)
	}
	return nil
}

// Enqueue adds an item to the queue, or starts playing it immediately when
// nothing is current. ErrDuplicateTrack and ErrQueueFull are query results
// for the caller's reply; the session is unchanged when they are returned.
func (s *Session) Enqueue(item QueueItem, front bool) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	if s.now != nil && SameTrack(s.now.Track.ID, item.Track.ID) || s.queue.containsLocked(item.Track.ID) {
		s.mu.Unlock()
		return ErrDuplicateTrack
	}
	if s.now == nil {
		s.mu.Unlock()
		s.play(&item)
		return nil
	}
	err := s.queue.enqueueLocked(item, front)
	s.mu.Unlock()
	if err == nil {
		s.manager.addQueued()
	}
	return err
}

// play makes the item current and starts it on the engine. Passing nil
// stops the player and prompts an idle check instead. A successful play
// proves the session useful again, so any pending leave is cancelled.
func (s *Session) play(item *QueueItem) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	if s.leaveTimer != nil {
		s.leaveTimer.Stop()
		s.leaveTimer = nil
	}
	s.now = item
	if item != nil {
		// Covers the race where the item was both queued and promoted.
		s.queue.removeLocked(item.Track.ID)
	}
	s.mu.Unlock()

	if item == nil {
		s.engine.Play(nil)
		s.Prompt()
		return
	}

	s.log.Info().Str("track", item.Track.ID).Str("title", item.Track.Title).Msg("playing track")
	s.engine.Play(item.Track)
	s.send("Now playing " + item.Track.Friendly() + " as requested by <@" + item.RequesterID + ">.")
	s.setPresence(item.Track.Title)
}

// PlayNext promotes the queue head, or prompts an idle check when the
// queue is empty. Used by fault recovery and the periodic checker.
func (s *Session) PlayNext() {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	item, err := s.queue.dequeueFirstLocked()
	if err != nil {
		s.now = nil
		s.mu.Unlock()
		s.Prompt()
		return
	}
	s.mu.Unlock()
	s.play(&item)
}

// StopTrack ends the current track; the engine's end callback advances
// the queue.
func (s *Session) StopTrack() {
	s.engine.Stop()
}

// SetVolume adjusts the engine's output gain.
func (s *Session) SetVolume(percent int) {
	s.engine.SetVolume(percent)
}

// Shuffle randomises the pending queue. The current item is unaffected.
func (s *Session) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.shuffleLocked()
}

// RemoveAt deletes the pending item at the given queue position.
func (s *Session) RemoveAt(i int) (QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.removeAtLocked(i)
}

// AddSkip registers a vote to skip the current track from the requester.
func (s *Session) AddSkip(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.skips[userID]; ok {
		return ErrAlreadyVoted
	}
	s.skips[userID] = struct{}{}
	return nil
}

// HasSkipped reports whether the user already voted to skip.
func (s *Session) HasSkipped(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.skips[userID]
	return ok
}

// Skips returns the current vote tally.
func (s *Session) Skips() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.skips)
}

func (s *Session) removeSkip(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.skips, userID)
}

// ActiveListeners counts the bound channel's members that are neither
// bots nor deafened.
func (s *Session) ActiveListeners() int {
	channel := s.Channel()
	if channel == "" {
		return 0
	}
	n := 0
	for _, m := range s.gateway.ChannelMembers(s.guildID, channel) {
		if !m.Bot && !m.Deafened {
			n++
		}
	}
	return n
}

// SkipsNeeded returns the vote threshold: ceil(listeners / 2).
func (s *Session) SkipsNeeded() int {
	return (s.ActiveListeners() + 1) / 2
}

// ShouldSkip reports whether enough listeners voted to end the track.
// A session already queued to leave never auto-skips.
func (s *Session) ShouldSkip() bool {
	if s.LeaveQueued() {
		return false
	}
	return s.Skips() >= s.SkipsNeeded()
}

// Prompt checks whether the session should still exist: nothing playing
// and nothing queued means it shuts itself down.
func (s *Session) Prompt() {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	empty := s.queue.lenLocked() == 0
	s.mu.Unlock()

	if empty && s.engine.Playing() == nil {
		s.log.Debug().Msg("nothing playing and queue empty, shutting down")
		s.Shutdown()
	}
}

// Shutdown stops the session now if that is safe, or schedules a retry.
// While the retry is pending the session is leave-pending: still bound,
// still answering queries, but destined to stop.
func (s *Session) Shutdown() {
	if s.Stopping() {
		return
	}
	if s.canShutdown() {
		s.ShutdownNow(true)
		return
	}
	s.queueShutdown()
}

// canShutdown reports whether leaving voice is safe. Disconnecting while a
// listener here is also in another session's active channel trips a
// platform reconnection defect that silences the bot for them, so the
// shutdown is deferred instead. Works on a registry snapshot; other
// sessions' state is read briefly without nesting their locks under ours.
func (s *Session) canShutdown() bool {
	for _, other := range s.manager.List() {
		if other == s || other.engine.Playing() == nil {
			continue
		}
		channel := other.Channel()
		if channel == "" {
			continue
		}
		for _, m := range s.gateway.ChannelMembers(other.guildID, channel) {
			if m.Bot {
				continue
			}
			if s.gateway.IsGuildMember(s.guildID, m.ID) {
				return false
			}
		}
	}
	return true
}

func (s *Session) queueShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping || s.leaveTimer != nil {
		return
	}
	s.log.Info().Dur("delay", leaveDelay).Msg("shutdown blocked by a listener clash, deferring")
	s.leaveTimer = time.AfterFunc(leaveDelay, s.leaveTimerFired)
}

// leaveTimerFired retries a deferred shutdown. Firing after the session
// already stopped is a harmless no-op.
func (s *Session) leaveTimerFired() {
	s.mu.Lock()
	s.leaveTimer = nil
	stopping := s.stopping
	s.mu.Unlock()
	if stopping {
		return
	}
	s.Shutdown()
}

// ShutdownNow stops the session unconditionally. Idempotent: the first
// call wins, later calls return immediately. After tearing down it asks
// any other leave-pending session to retry, since the clash that blocked
// it may have just been resolved.
func (s *Session) ShutdownNow(leave bool) {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	if s.leaveTimer != nil {
		s.leaveTimer.Stop()
		s.leaveTimer = nil
	}
	s.queue.clearLocked()
	s.now = nil
	s.skips = make(map[string]struct{})
	s.channelID = ""
	s.mu.Unlock()

	s.log.Info().Msg("shutting down session")

	s.engine.Destroy()
	s.setPresence("")

	if leave && s.gateway.IsConnected(s.guildID) {
		s.gateway.LeaveChannel(s.guildID)
	}

	s.manager.MarkRecent(s.guildID)
	s.manager.Remove(s)

	for _, other := range s.manager.List() {
		if other != s && other.LeaveQueued() {
			other.Shutdown()
		}
	}
}

// Status is a consistent snapshot of the session for display.
type Status struct {
	Now         *QueueItem
	Queue       []QueueItem
	Remaining   time.Duration
	Skips       int
	SkipsNeeded int
	ChannelID   string
	LeaveQueued bool
}

// CurrentStatus snapshots the session for the queue and now-playing
// commands.
func (s *Session) CurrentStatus() Status {
	s.mu.Lock()
	st := Status{
		Now:         s.now,
		Queue:       s.queue.itemsLocked(),
		Skips:       len(s.skips),
		ChannelID:   s.channelID,
		LeaveQueued: s.leaveTimer != nil,
	}
	s.mu.Unlock()
	st.Remaining = s.Duration()
	st.SkipsNeeded = s.SkipsNeeded()
	return st
}

// send delivers a status message to the guild's output channel. Having
// nowhere to talk is terminal: a mute session is useless, so it stops.
func (s *Session) send(message string) {
	if err := s.notify.Send(s.guildID, message); err != nil {
		s.log.Error().Err(err).Msg("no channel to talk to, shutting down")
		s.ShutdownNow(true)
	}
}

// setPresence updates the bot's presence to the given title, or clears it
// when title is empty but only if the presence still shows the title this
// session last announced. Another session may have overwritten it since.
func (s *Session) setPresence(title string) {
	s.mu.Lock()
	last := s.lastPlaying
	s.lastPlaying = title
	stopping := s.stopping
	s.mu.Unlock()

	if title != "" {
		if !stopping {
			s.gateway.SetPresence(title)
		}
		return
	}
	if last != "" && s.gateway.Presence() == last {
		s.gateway.SetPresence("")
	}
}
