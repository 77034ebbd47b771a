package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/version"
)

type AboutCommand struct{}

func (c *AboutCommand) Name() string        { return "about" }
func (c *AboutCommand) Description() string { return "Show what this bot is and what build it runs" }
func (c *AboutCommand) Group() string       { return "core" }
func (c *AboutCommand) Category() string    { return "🕯️ Information" }

func (c *AboutCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *AboutCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*SlashContext)
	if !ok {
		return nil
	}
	return v.RespondEphemeral(fmt.Sprintf(
		"**%s** — a music companion for your voice channels.\nBuild: %s", version.AppName, version.String()))
}

// RegisterBuiltins wires the informational commands that ship with every
// deployment, regardless of which feature groups are enabled.
func RegisterBuiltins() {
	RegisterCommand(&HelpCommand{})
	RegisterCommand(&AboutCommand{})
}
