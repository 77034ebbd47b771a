package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
)

// registerCommands overwrites the guild's slash commands with the
// registry's current set, paced by the registration limiter.
func (b *Bot) registerCommands(ctx context.Context, guildID string) error {
	if err := b.registerLimit.Wait(ctx); err != nil {
		return err
	}

	var defs []*discordgo.ApplicationCommand
	for _, cmd := range core.AllCommands() {
		if sp, ok := cmd.(core.SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				defs = append(defs, def)
			}
		}
	}

	appID := b.dg.State.User.ID
	if _, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, defs); err != nil {
		return fmt.Errorf("bulk overwrite for guild %s: %w", guildID, err)
	}
	b.log.Debug().Str("guild", guildID).Int("commands", len(defs)).Msg("slash commands registered")
	return nil
}
