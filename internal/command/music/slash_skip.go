package music

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"soundwarden/internal/command/core"
	"soundwarden/internal/music"
)

type SkipCommand struct{}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Vote to skip the current track" }
func (c *SkipCommand) Group() string       { return "music" }
func (c *SkipCommand) Category() string    { return category }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}

	session, ok := liveSession(v)
	if !ok {
		return nil
	}

	now := session.NowPlaying()
	if now == nil {
		// Items waiting with nothing playing means a lost end event;
		// nudge the queue instead of arguing with the voter.
		if session.QueueLen() > 0 {
			session.PlayNext()
			return v.Respond("Oops! Something went wrong; skipping ahead.")
		}
		return v.RespondEphemeral("Nothing is playing.")
	}

	userID := v.Event.Member.User.ID
	if now.RequesterID == userID {
		session.StopTrack()
		return v.Respond("Skipped; the requester changed their mind.")
	}

	if err := session.AddSkip(userID); errors.Is(err, music.ErrAlreadyVoted) {
		return v.RespondEphemeral("You already voted to skip this track.")
	}

	if session.ShouldSkip() {
		session.StopTrack()
		return v.Respond("The vote passed; skipping " + now.Track.Friendly() + ".")
	}
	return v.Respond(fmt.Sprintf("Vote registered: %d of %d needed.", session.Skips(), session.SkipsNeeded()))
}

type ForceSkipCommand struct{}

func (c *ForceSkipCommand) Name() string        { return "forceskip" }
func (c *ForceSkipCommand) Description() string { return "Skip the current track without a vote" }
func (c *ForceSkipCommand) Group() string       { return "music" }
func (c *ForceSkipCommand) Category() string    { return category }

func (c *ForceSkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ForceSkipCommand) Run(ctx interface{}) error {
	v, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	if !isDJ(v) {
		return v.RespondEphemeral("Only DJs can force a skip.")
	}

	session, ok := liveSession(v)
	if !ok {
		return nil
	}
	now := session.NowPlaying()
	if now == nil {
		return v.RespondEphemeral("Nothing is playing.")
	}
	session.StopTrack()
	return v.Respond("Skipped " + now.Track.Friendly() + ".")
}
