package music

import (
	"errors"
	"slices"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
	"soundwarden/internal/music"
)

const category = "🎵 Music"

var errNotInVoice = errors.New("you need to be in a voice channel first")

// userVoiceChannel finds the channel the invoker is speaking in.
func userVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", errNotInVoice
	}
	return vs.ChannelID, nil
}

// isDJ reports whether the invoker may use the privileged music commands:
// administrators and server managers always, plus holders of the
// configured DJ role.
func isDJ(ctx *core.SlashContext) bool {
	member := ctx.Event.Member
	if member == nil {
		return false
	}
	if member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0 {
		return true
	}
	settings, err := ctx.Storage.MusicSettings(ctx.Event.GuildID)
	if err != nil || settings.DJRoleID == "" {
		return false
	}
	return slices.Contains(member.Roles, settings.DJRoleID)
}

// liveSession fetches the guild's session, or replies why there is none.
func liveSession(ctx *core.SlashContext) (*music.Session, bool) {
	session, ok := ctx.Manager.Get(ctx.Event.GuildID)
	if !ok || session.Stopping() {
		if ctx.Manager.RecentlyStopped(ctx.Event.GuildID) {
			_ = ctx.RespondEphemeral("That track just finished; nothing is playing now.")
		} else {
			_ = ctx.RespondEphemeral("Nothing is playing.")
		}
		return nil, false
	}
	return session, true
}
