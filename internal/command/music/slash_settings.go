package music

import (
	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
)

type SettingsCommand struct{}

func (c *SettingsCommand) Name() string        { return "music-settings" }
func (c *SettingsCommand) Description() string { return "Configure music for this server" }
func (c *SettingsCommand) Group() string       { return "music" }
func (c *SettingsCommand) Category() string    { return "⚙️ Settings" }

func (c *SettingsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "output",
				Description: "Channel for playback announcements",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Leave empty to clear",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "lock",
				Description: "Restrict music commands to one channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Leave empty to unlock",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "dj",
				Description: "Role allowed to use privileged music commands",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Leave empty to clear",
					},
				},
			},
		},
	}
}

func (c *SettingsCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	member := v.Event.Member
	if member == nil || member.Permissions&discordgo.PermissionAdministrator == 0 {
		return v.RespondEphemeral("Only administrators can change music settings.")
	}

	options := v.Event.ApplicationCommandData().Options
	if len(options) == 0 {
		return v.RespondEphemeral("Pick a setting to change.")
	}
	sub := options[0]
	guildID := v.Event.GuildID

	switch sub.Name {
	case "output":
		id := subChannelID(sub)
		if err := v.Storage.SetOutputChannel(guildID, id); err != nil {
			return err
		}
		if id == "" {
			return v.Respond("Announcement channel cleared.")
		}
		return v.Respond("Announcements will go to <#" + id + ">.")

	case "lock":
		id := subChannelID(sub)
		if err := v.Storage.SetLockChannel(guildID, id); err != nil {
			return err
		}
		if id == "" {
			return v.Respond("Music commands unlocked.")
		}
		return v.Respond("Music commands locked to <#" + id + ">.")

	case "dj":
		var id string
		for _, opt := range sub.Options {
			if opt.Name == "role" {
				id = opt.RoleValue(v.Session, guildID).ID
			}
		}
		if err := v.Storage.SetDJRole(guildID, id); err != nil {
			return err
		}
		if id == "" {
			return v.Respond("DJ role cleared.")
		}
		return v.Respond("DJ role set to <@&" + id + ">.")
	}
	return nil
}

func subChannelID(sub *discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range sub.Options {
		if opt.Name == "channel" {
			if ch, ok := opt.Value.(string); ok {
				return ch
			}
		}
	}
	return ""
}
