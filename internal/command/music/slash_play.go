package music

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
	"soundwarden/internal/music"
)

type PlayCommand struct{}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a track or playlist, or queue it" }
func (c *PlayCommand) Group() string       { return "music" }
func (c *PlayCommand) Category() string    { return category }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "input",
				Description: "YouTube link, playlist link or direct stream URL",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}

	input := v.Option("input")
	if input == "" {
		return v.RespondEphemeral("Tell me what to play.")
	}

	userID := v.Event.Member.User.ID
	channelID, err := userVoiceChannel(v.Session, v.Event.GuildID, userID)
	if err != nil {
		return v.RespondEphemeral("Join a voice channel first and ask again.")
	}

	session := v.Manager.GetOrCreate(v.Event.GuildID)
	if bound := session.Channel(); bound != "" && bound != channelID && session.ActiveListeners() > 0 {
		return v.RespondEphemeral("I'm already playing to listeners in another channel.")
	}
	if session.QueueFull() {
		return v.RespondEphemeral("The queue is full; try again once it has drained.")
	}

	if err := v.Defer(); err != nil {
		return err
	}

	if session.Channel() != channelID {
		if err := session.BindChannel(channelID); err != nil {
			return v.Followup("I couldn't join your voice channel.")
		}
	}

	v.Manager.Resolver().Resolve(context.Background(), input, &music.LoadResults{
		Session:     session,
		RequesterID: userID,
		DJ:          isDJ(v),
		Reply: func(msg string) {
			_ = v.Followup(msg)
		},
	})
	return nil
}
