package music

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
	"soundwarden/internal/music"
)

const queueDisplayLimit = 10

type QueueCommand struct{}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show what is queued up" }
func (c *QueueCommand) Group() string       { return "music" }
func (c *QueueCommand) Category() string    { return category }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	session, ok := liveSession(v)
	if !ok {
		return nil
	}

	st := session.CurrentStatus()
	var sb strings.Builder
	if st.Now != nil {
		fmt.Fprintf(&sb, "Now playing %s, requested by <@%s>.\n", st.Now.Track.Friendly(), st.Now.RequesterID)
	}
	if len(st.Queue) == 0 {
		sb.WriteString("The queue is empty.")
		return v.Respond(sb.String())
	}

	fmt.Fprintf(&sb, "%d queued (%s remaining", len(st.Queue), music.FormatDuration(st.Remaining))
	if st.LeaveQueued {
		sb.WriteString("; I will disconnect when it ends")
	}
	sb.WriteString("):\n")

	for i, item := range st.Queue {
		if i == queueDisplayLimit {
			fmt.Fprintf(&sb, "…and %d more.\n", len(st.Queue)-queueDisplayLimit)
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%s) — <@%s>\n",
			i+1, item.Track.Friendly(), music.FormatDuration(item.Track.Duration), item.RequesterID)
	}
	return v.Respond(sb.String())
}

type NowPlayingCommand struct{}

func (c *NowPlayingCommand) Name() string        { return "nowplaying" }
func (c *NowPlayingCommand) Description() string { return "Show the current track" }
func (c *NowPlayingCommand) Group() string       { return "music" }
func (c *NowPlayingCommand) Category() string    { return category }

func (c *NowPlayingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *NowPlayingCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	session, ok := liveSession(v)
	if !ok {
		return nil
	}

	st := session.CurrentStatus()
	if st.Now == nil {
		return v.RespondEphemeral("Nothing is playing.")
	}

	reply := fmt.Sprintf("Now playing %s, requested by <@%s>.", st.Now.Track.Friendly(), st.Now.RequesterID)
	if st.Skips > 0 {
		reply += fmt.Sprintf(" Skip votes: %d of %d.", st.Skips, st.SkipsNeeded)
	}
	return v.Respond(reply)
}
