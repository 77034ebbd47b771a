package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"soundwarden/internal/music"
)

// gateway adapts a discordgo session to the voice operations the core
// needs. It also hands opus frame sinks to the engine.
type gateway struct {
	dg  *discordgo.Session
	log zerolog.Logger

	mu       sync.Mutex
	presence string
}

func newGateway(dg *discordgo.Session, log zerolog.Logger) *gateway {
	return &gateway{dg: dg, log: log.With().Str("component", "gateway").Logger()}
}

func (g *gateway) voiceConn(guildID string) *discordgo.VoiceConnection {
	g.dg.RLock()
	defer g.dg.RUnlock()
	return g.dg.VoiceConnections[guildID]
}

func (g *gateway) selfID() string {
	if g.dg.State != nil && g.dg.State.User != nil {
		return g.dg.State.User.ID
	}
	return ""
}

func (g *gateway) JoinChannel(guildID, channelID string) error {
	perms, err := g.dg.UserChannelPermissions(g.selfID(), channelID)
	if err == nil && perms&discordgo.PermissionVoiceConnect == 0 {
		return music.ErrPermissionDenied
	}

	if _, err := g.dg.ChannelVoiceJoin(guildID, channelID, false, true); err != nil {
		return fmt.Errorf("voice join: %w", err)
	}
	return nil
}

func (g *gateway) LeaveChannel(guildID string) {
	vc := g.voiceConn(guildID)
	if vc == nil {
		return
	}
	if err := vc.Disconnect(); err != nil {
		g.log.Warn().Err(err).Str("guild", guildID).Msg("voice disconnect failed")
	}
}

func (g *gateway) IsConnected(guildID string) bool {
	return g.voiceConn(guildID) != nil
}

func (g *gateway) ConnectedChannel(guildID string) string {
	vc := g.voiceConn(guildID)
	if vc == nil {
		return ""
	}
	return vc.ChannelID
}

func (g *gateway) VoiceGuilds() []string {
	g.dg.RLock()
	defer g.dg.RUnlock()
	out := make([]string, 0, len(g.dg.VoiceConnections))
	for guildID := range g.dg.VoiceConnections {
		out = append(out, guildID)
	}
	return out
}

func (g *gateway) ChannelMembers(guildID, channelID string) []music.Member {
	guild, err := g.dg.State.Guild(guildID)
	if err != nil {
		return nil
	}
	self := g.selfID()

	var out []music.Member
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		m := music.Member{
			ID:       vs.UserID,
			Bot:      vs.UserID == self,
			Deafened: vs.Deaf || vs.SelfDeaf,
		}
		if member, err := g.dg.State.Member(guildID, vs.UserID); err == nil && member.User != nil {
			m.Bot = m.Bot || member.User.Bot
		}
		out = append(out, m)
	}
	return out
}

func (g *gateway) IsGuildMember(guildID, userID string) bool {
	if _, err := g.dg.State.Member(guildID, userID); err == nil {
		return true
	}
	_, err := g.dg.GuildMember(guildID, userID)
	return err == nil
}

func (g *gateway) SelfMuted(guildID string) bool {
	vs, err := g.dg.State.VoiceState(guildID, g.selfID())
	if err != nil || vs == nil {
		return false
	}
	return vs.Mute
}

func (g *gateway) CanSelfUnmute(guildID, channelID string) bool {
	if channelID == "" {
		return false
	}
	perms, err := g.dg.UserChannelPermissions(g.selfID(), channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionVoiceMuteMembers != 0
}

func (g *gateway) SelfUnmute(guildID string) error {
	return g.dg.GuildMemberMute(guildID, g.selfID(), false)
}

func (g *gateway) SetPresence(text string) {
	g.mu.Lock()
	g.presence = text
	g.mu.Unlock()
	if err := g.dg.UpdateGameStatus(0, text); err != nil {
		g.log.Warn().Err(err).Msg("presence update failed")
	}
}

func (g *gateway) Presence() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.presence
}

// OpusSender exposes the live voice connection's frame sink to the engine.
func (g *gateway) OpusSender(guildID string) (chan<- []byte, error) {
	vc := g.voiceConn(guildID)
	if vc == nil {
		return nil, fmt.Errorf("no voice connection for guild %s", guildID)
	}
	return vc.OpusSend, nil
}

func (g *gateway) Speaking(guildID string, on bool) error {
	vc := g.voiceConn(guildID)
	if vc == nil {
		return fmt.Errorf("no voice connection for guild %s", guildID)
	}
	return vc.Speaking(on)
}
