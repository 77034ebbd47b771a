package music

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
	"soundwarden/internal/music"
)

type ShuffleCommand struct{}

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffle the queue" }
func (c *ShuffleCommand) Group() string       { return "music" }
func (c *ShuffleCommand) Category() string    { return category }

func (c *ShuffleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ShuffleCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	session, ok := liveSession(v)
	if !ok {
		return nil
	}
	if session.QueueLen() < 2 {
		return v.RespondEphemeral("There isn't enough queued to shuffle.")
	}
	session.Shuffle()
	return v.Respond("Queue shuffled.")
}

type RemoveCommand struct{}

func (c *RemoveCommand) Name() string        { return "remove" }
func (c *RemoveCommand) Description() string { return "Remove a track from the queue" }
func (c *RemoveCommand) Group() string       { return "music" }
func (c *RemoveCommand) Category() string    { return category }

func (c *RemoveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "position",
				Description: "Queue position as shown by /queue",
				Required:    true,
			},
		},
	}
}

func (c *RemoveCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	session, ok := liveSession(v)
	if !ok {
		return nil
	}

	position := int(v.IntOption("position"))
	items := session.QueueItems()
	if position < 1 || position > len(items) {
		return v.RespondEphemeral("There is no track at that position.")
	}

	// Requesters may pull their own tracks; anything else takes a DJ.
	if items[position-1].RequesterID != v.Event.Member.User.ID && !isDJ(v) {
		return v.RespondEphemeral("You can only remove tracks you requested.")
	}

	item, err := session.RemoveAt(position - 1)
	if errors.Is(err, music.ErrIndexOutOfRange) {
		return v.RespondEphemeral("The queue changed; try again.")
	}
	if err != nil {
		return err
	}
	return v.Respond("Removed " + item.Track.Friendly() + " from the queue.")
}

type VolumeCommand struct{}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the playback volume" }
func (c *VolumeCommand) Group() string       { return "music" }
func (c *VolumeCommand) Category() string    { return category }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	var minVolume float64 = 0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "percent",
				Description: "Volume from 0 to 150",
				Required:    true,
				MinValue:    &minVolume,
				MaxValue:    150,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	if !isDJ(v) {
		return v.RespondEphemeral("Only DJs can change the volume.")
	}
	session, ok := liveSession(v)
	if !ok {
		return nil
	}

	percent := int(v.IntOption("percent"))
	session.SetVolume(percent)
	_ = v.Storage.SetVolume(v.Event.GuildID, percent)
	return v.Respond(fmt.Sprintf("Volume set to %d%%.", percent))
}

type ResetCommand struct{}

func (c *ResetCommand) Name() string        { return "reset" }
func (c *ResetCommand) Description() string { return "Stop playback, clear the queue and leave" }
func (c *ResetCommand) Group() string       { return "music" }
func (c *ResetCommand) Category() string    { return category }

func (c *ResetCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ResetCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	if !isDJ(v) {
		return v.RespondEphemeral("Only DJs can reset playback.")
	}
	session, ok := liveSession(v)
	if !ok {
		return nil
	}
	session.ShutdownNow(true)
	return v.Respond("Playback stopped and the queue cleared.")
}
