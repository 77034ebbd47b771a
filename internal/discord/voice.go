package discord

import (
	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/music"
)

// onVoiceStateUpdate translates raw voice state changes into the events
// the session machine understands and hands them to the guild's session.
// Guilds without a session ignore their voice traffic entirely.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	session, ok := b.manager.Get(v.GuildID)
	if !ok {
		return
	}
	for _, ev := range translateVoiceUpdate(s.State.User.ID, v) {
		session.HandleVoiceEvent(ev)
	}
}

// translateVoiceUpdate maps one discord voice update onto zero or more
// session events. A single update can carry both a move and a deafen
// change, so the result is a slice.
func translateVoiceUpdate(selfID string, v *discordgo.VoiceStateUpdate) []music.VoiceEvent {
	var before *discordgo.VoiceState
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate
	}

	var events []music.VoiceEvent

	if v.UserID == selfID {
		if before != nil && before.ChannelID != v.ChannelID && v.ChannelID != "" {
			events = append(events, music.SelfMoved{
				FromChannelID: before.ChannelID,
				ToChannelID:   v.ChannelID,
			})
		}
		if before == nil || before.Mute != v.Mute {
			events = append(events, music.SelfMuted{Muted: v.Mute})
		}
		return events
	}

	switch {
	case before != nil && before.ChannelID != "" && v.ChannelID == "":
		events = append(events, music.ParticipantLeft{
			UserID:    v.UserID,
			ChannelID: before.ChannelID,
		})
	case before != nil && before.ChannelID != "" && before.ChannelID != v.ChannelID:
		events = append(events, music.ParticipantMoved{
			UserID:        v.UserID,
			FromChannelID: before.ChannelID,
			ToChannelID:   v.ChannelID,
		})
	}

	deafened := v.Deaf || v.SelfDeaf
	wasDeafened := before != nil && (before.Deaf || before.SelfDeaf)
	if v.ChannelID != "" && deafened != wasDeafened {
		events = append(events, music.ParticipantDeafened{
			UserID:    v.UserID,
			ChannelID: v.ChannelID,
			Deafened:  deafened,
		})
	}

	return events
}
