package core

import "github.com/bwmarrin/discordgo"

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// WithGuildOnly drops invocations from outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
					return v.RespondEphemeral("That only works inside a server.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithChannelLock rejects music commands issued outside the guild's
// locked command channel, when one is configured.
func WithChannelLock() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashContext)
				if !ok {
					return cmd.Run(ctx)
				}
				settings, err := v.Storage.MusicSettings(v.Event.GuildID)
				if err == nil && settings.LockChannelID != "" && settings.LockChannelID != v.Event.ChannelID {
					return v.RespondEphemeral("Music commands are locked to <#" + settings.LockChannelID + ">.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
