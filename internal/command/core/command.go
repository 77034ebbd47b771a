package core

import (
	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/music"
	"soundwarden/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext - what runtime hands you when executing a slash command
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	Manager *music.Manager
}

// Option returns the named string option, or "" when absent.
func (c *SlashContext) Option(name string) string {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

// IntOption returns the named integer option, or 0 when absent.
func (c *SlashContext) IntOption(name string) int64 {
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

// Respond sends the initial interaction response.
func (c *SlashContext) Respond(content string) error {
	return c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// RespondEphemeral answers so only the invoker sees it.
func (c *SlashContext) RespondEphemeral(content string) error {
	return c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// Defer acknowledges the interaction; the reply comes later via Followup.
func (c *SlashContext) Defer() error {
	return c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// Followup sends a message after Defer.
func (c *SlashContext) Followup(content string) error {
	_, err := c.Session.FollowupMessageCreate(c.Event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}
