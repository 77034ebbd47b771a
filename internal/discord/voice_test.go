package discord

import (
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/music"
)

const selfID = "bot-self"

func voiceUpdate(userID, channelID string, before *discordgo.VoiceState) *discordgo.VoiceStateUpdate {
	return &discordgo.VoiceStateUpdate{
		VoiceState: &discordgo.VoiceState{
			UserID:    userID,
			ChannelID: channelID,
		},
		BeforeUpdate: before,
	}
}

func TestTranslateVoiceUpdate(t *testing.T) {
	tests := []struct {
		name   string
		update *discordgo.VoiceStateUpdate
		want   []music.VoiceEvent
	}{
		{
			name:   "user joins without prior state",
			update: voiceUpdate("u1", "c1", nil),
			want:   nil,
		},
		{
			name:   "user leaves",
			update: voiceUpdate("u1", "", &discordgo.VoiceState{UserID: "u1", ChannelID: "c1"}),
			want:   []music.VoiceEvent{music.ParticipantLeft{UserID: "u1", ChannelID: "c1"}},
		},
		{
			name:   "user moves channels",
			update: voiceUpdate("u1", "c2", &discordgo.VoiceState{UserID: "u1", ChannelID: "c1"}),
			want: []music.VoiceEvent{
				music.ParticipantMoved{UserID: "u1", FromChannelID: "c1", ToChannelID: "c2"},
			},
		},
		{
			name: "user deafens in place",
			update: &discordgo.VoiceStateUpdate{
				VoiceState:   &discordgo.VoiceState{UserID: "u1", ChannelID: "c1", SelfDeaf: true},
				BeforeUpdate: &discordgo.VoiceState{UserID: "u1", ChannelID: "c1"},
			},
			want: []music.VoiceEvent{
				music.ParticipantDeafened{UserID: "u1", ChannelID: "c1", Deafened: true},
			},
		},
		{
			name: "user undeafens in place",
			update: &discordgo.VoiceStateUpdate{
				VoiceState:   &discordgo.VoiceState{UserID: "u1", ChannelID: "c1"},
				BeforeUpdate: &discordgo.VoiceState{UserID: "u1", ChannelID: "c1", Deaf: true},
			},
			want: []music.VoiceEvent{
				music.ParticipantDeafened{UserID: "u1", ChannelID: "c1", Deafened: false},
			},
		},
		{
			name:   "bot moved by a moderator",
			update: voiceUpdate(selfID, "c2", &discordgo.VoiceState{UserID: selfID, ChannelID: "c1"}),
			want: []music.VoiceEvent{
				music.SelfMoved{FromChannelID: "c1", ToChannelID: "c2"},
			},
		},
		{
			name: "bot server-muted",
			update: &discordgo.VoiceStateUpdate{
				VoiceState:   &discordgo.VoiceState{UserID: selfID, ChannelID: "c1", Mute: true},
				BeforeUpdate: &discordgo.VoiceState{UserID: selfID, ChannelID: "c1"},
			},
			want: []music.VoiceEvent{music.SelfMuted{Muted: true}},
		},
		{
			name: "no change produces nothing",
			update: &discordgo.VoiceStateUpdate{
				VoiceState:   &discordgo.VoiceState{UserID: "u1", ChannelID: "c1"},
				BeforeUpdate: &discordgo.VoiceState{UserID: "u1", ChannelID: "c1"},
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateVoiceUpdate(selfID, tt.update)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("translateVoiceUpdate = %#v, want %#v", got, tt.want)
			}
		})
	}
}
