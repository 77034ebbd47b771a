package music

// VoiceEvent is the closed set of voice-state changes a session reacts to.
// The gateway adapter translates raw platform events into these variants;
// Session.HandleVoiceEvent dispatches over them exhaustively.
type VoiceEvent interface {
	voiceEvent()
}

// ParticipantLeft fires when a user disconnects from a voice channel.
type ParticipantLeft struct {
	UserID    string
	ChannelID string
}

// ParticipantMoved fires when a user switches voice channels.
type ParticipantMoved struct {
	UserID        string
	FromChannelID string
	ToChannelID   string
}

// SelfMoved fires when the bot itself was moved between channels.
type SelfMoved struct {
	FromChannelID string
	ToChannelID   string
}

// SelfMuted fires when the bot's server-mute state changed.
type SelfMuted struct {
	Muted bool
}

// ParticipantDeafened fires when a user's deafen state changed.
type ParticipantDeafened struct {
	UserID    string
	ChannelID string
	Deafened  bool
}

func (ParticipantLeft) voiceEvent()     {}
func (ParticipantMoved) voiceEvent()    {}
func (SelfMoved) voiceEvent()           {}
func (SelfMuted) voiceEvent()           {}
func (ParticipantDeafened) voiceEvent() {}
