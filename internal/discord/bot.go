package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"soundwarden/internal/command/core"
	cmdmusic "soundwarden/internal/command/music"
	"soundwarden/internal/config"
	"soundwarden/internal/engine"
	"soundwarden/internal/music"
	"soundwarden/internal/storage"
)

// Bot is the Discord frontend: it owns the session, the session manager
// and command dispatch.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	store   *storage.Storage
	manager *music.Manager
	log     zerolog.Logger

	// registerLimit paces per-guild command registration so a large
	// guild list does not trip the API rate limits at startup.
	registerLimit *rate.Limiter
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, metrics *music.Metrics, log zerolog.Logger) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:            dg,
		cfg:           cfg,
		store:         store,
		log:           log.With().Str("component", "discord").Logger(),
		registerLimit: rate.NewLimiter(rate.Limit(1), 3),
	}

	gw := newGateway(dg, log)
	resolver := engine.NewResolver(log)
	b.manager = music.NewManager(music.Deps{
		Gateway:  gw,
		Notifier: newNotifier(dg, store, log),
		Resolver: resolver,
		NewEngine: func(guildID string, l music.EngineListener) music.Engine {
			return engine.New(guildID, l, gw, log)
		},
		Config: b.guildConfig,
	}, metrics, log)

	core.RegisterBuiltins()
	cmdmusic.Register()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.manager.RunChecker(ctx)

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, stopping sessions")
	b.manager.StopAll()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages
}

// guildConfig loads the per-guild settings the session machine consults.
func (b *Bot) guildConfig(guildID string) music.GuildConfig {
	settings, err := b.store.MusicSettings(guildID)
	if err != nil {
		b.log.Warn().Err(err).Str("guild", guildID).Msg("could not load guild settings")
		return music.GuildConfig{}
	}
	return music.GuildConfig{
		OutputChannelID: settings.OutputChannelID,
		LockChannelID:   settings.LockChannelID,
		DJRoleID:        settings.DJRoleID,
		Volume:          settings.Volume,
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("user", s.State.User.Username).Int("guilds", len(r.Guilds)).Msg("discord session ready")
	go func() {
		for _, g := range r.Guilds {
			if err := b.registerCommands(context.Background(), g.ID); err != nil {
				b.log.Error().Err(err).Str("guild", g.ID).Msg("command registration failed")
			}
		}
	}()
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("joined guild")
	go func() {
		if err := b.registerCommands(context.Background(), g.ID); err != nil {
			b.log.Error().Err(err).Str("guild", g.ID).Msg("command registration failed")
		}
	}()
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	ctx := &core.SlashContext{
		Session: s,
		Event:   i,
		Storage: b.store,
		Manager: b.manager,
	}
	if err := cmd.Run(ctx); err != nil {
		b.log.Error().Err(err).Str("command", name).Str("guild", i.GuildID).Msg("command failed")
		_ = ctx.RespondEphemeral("Something went wrong running that command.")
	}
}
