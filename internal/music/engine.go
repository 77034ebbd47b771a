package music

import (
	"context"
	"time"
)

// EndReason describes why the engine stopped delivering a track.
type EndReason int

const (
	// EndFinished means the track played to its natural end.
	EndFinished EndReason = iota
	// EndLoadFailed means the track never produced audio.
	EndLoadFailed
	// EndStopped means playback was stopped explicitly.
	EndStopped
	// EndReplaced means another track took over the player.
	EndReplaced
	// EndCleanup means the player itself was torn down.
	EndCleanup
)

// MayStartNext reports whether the session may progress the queue after
// a track ended for this reason. Replacement and cleanup must not trigger
// progression or the replacing track would be double-started.
func (r EndReason) MayStartNext() bool {
	return r == EndFinished || r == EndLoadFailed
}

func (r EndReason) String() string {
	switch r {
	case EndFinished:
		return "finished"
	case EndLoadFailed:
		return "load-failed"
	case EndStopped:
		return "stopped"
	case EndReplaced:
		return "replaced"
	case EndCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Engine decodes and streams one guild's audio. Implementations invoke the
// session's EngineListener callbacks from their own goroutines; the session
// serialises them behind its mutex.
type Engine interface {
	// Play starts the given track, replacing whatever is playing.
	// Passing nil stops the player.
	Play(t *Track)
	// Stop ends the current track with EndStopped.
	Stop()
	// Playing returns the track currently producing audio, or nil.
	Playing() *Track
	// Position returns how far the current track has played.
	Position() time.Duration
	// SetVolume adjusts output gain, in percent.
	SetVolume(percent int)
	// Destroy stops playback and releases the engine. Further calls are no-ops.
	Destroy()
}

// EngineListener receives playback lifecycle callbacks from the engine.
type EngineListener interface {
	OnTrackStart(t *Track)
	OnTrackEnd(t *Track, reason EndReason)
	OnTrackException(t *Track, err error)
	OnTrackStuck(t *Track, threshold time.Duration)
}

// LoadHandler receives the outcome of resolving a play request.
type LoadHandler interface {
	TrackLoaded(t *Track)
	PlaylistLoaded(tracks []*Track)
	NoMatches()
	LoadFailed(err error)
}

// Resolver turns a user query into playable tracks, asynchronously.
type Resolver interface {
	Resolve(ctx context.Context, query string, h LoadHandler)
}

// Member is a voice channel participant as seen by the gateway.
type Member struct {
	ID       string
	Bot      bool
	Deafened bool
}

// Gateway is the slice of the chat platform the core needs: joining and
// leaving voice channels, inspecting who is listening, and presence. The
// discord package provides the production implementation.
type Gateway interface {
	// JoinChannel connects the bot's voice session to the channel,
	// returning ErrPermissionDenied when the bot may not join.
	JoinChannel(guildID, channelID string) error
	LeaveChannel(guildID string)
	IsConnected(guildID string) bool
	ConnectedChannel(guildID string) string
	// VoiceGuilds lists every guild with an open voice connection,
	// whether or not a session tracks it.
	VoiceGuilds() []string

	ChannelMembers(guildID, channelID string) []Member
	IsGuildMember(guildID, userID string) bool

	SelfMuted(guildID string) bool
	CanSelfUnmute(guildID, channelID string) bool
	SelfUnmute(guildID string) error

	SetPresence(text string)
	Presence() string
}

// Notifier delivers a session's status messages to the guild's output
// channel. A non-nil error means no channel could be found; the session
// shuts itself down in response.
type Notifier interface {
	Send(guildID, message string) error
}

// GuildConfig is the per-guild configuration the core consults. Values
// come from the storage layer; empty strings mean unset.
type GuildConfig struct {
	OutputChannelID string
	LockChannelID   string
	DJRoleID        string
	Volume          int
}
