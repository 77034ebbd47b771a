package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"soundwarden/internal/storage"
)

var errNoTalkableChannel = errors.New("no channel the bot can talk in")

// notifier delivers session announcements. It walks a fallback chain:
// the configured output channel, a channel named for bots, the guild's
// system channel, then the first text channel the bot can send in.
// Exhausting the chain is the error the session treats as terminal.
type notifier struct {
	dg    *discordgo.Session
	store *storage.Storage
	log   zerolog.Logger
}

func newNotifier(dg *discordgo.Session, store *storage.Storage, log zerolog.Logger) *notifier {
	return &notifier{dg: dg, store: store, log: log.With().Str("component", "notifier").Logger()}
}

func (n *notifier) Send(guildID, message string) error {
	for _, channelID := range n.candidates(guildID) {
		if channelID == "" {
			continue
		}
		if _, err := n.dg.ChannelMessageSend(channelID, message); err == nil {
			return nil
		} else {
			n.log.Debug().Err(err).Str("channel", channelID).Msg("send failed, trying next channel")
		}
	}
	return errNoTalkableChannel
}

func (n *notifier) candidates(guildID string) []string {
	var out []string

	if settings, err := n.store.MusicSettings(guildID); err == nil {
		out = append(out, settings.OutputChannelID)
	}

	guild, err := n.dg.State.Guild(guildID)
	if err != nil {
		return out
	}

	for _, ch := range guild.Channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if ch.Name == "bot" || ch.Name == "bots" {
			out = append(out, ch.ID)
		}
	}

	out = append(out, guild.SystemChannelID)

	for _, ch := range guild.Channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if n.canSend(ch.ID) {
			out = append(out, ch.ID)
			break
		}
	}
	return out
}

func (n *notifier) canSend(channelID string) bool {
	self := ""
	if n.dg.State != nil && n.dg.State.User != nil {
		self = n.dg.State.User.ID
	}
	perms, err := n.dg.UserChannelPermissions(self, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionSendMessages != 0 && perms&discordgo.PermissionViewChannel != 0
}
