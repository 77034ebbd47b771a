package music

import "soundwarden/internal/command/core"

// Register wires every music command into the registry. The channel lock
// applies to the playback commands; settings must stay reachable from
// anywhere or a bad lock could never be undone.
func Register() {
	locked := []core.Command{
		&PlayCommand{},
		&SkipCommand{},
		&ForceSkipCommand{},
		&QueueCommand{},
		&NowPlayingCommand{},
		&ShuffleCommand{},
		&RemoveCommand{},
		&VolumeCommand{},
		&ResetCommand{},
	}
	for _, cmd := range locked {
		core.RegisterCommand(core.ApplyMiddlewares(cmd, core.WithChannelLock(), core.WithGuildOnly()))
	}
	core.RegisterCommand(core.ApplyMiddlewares(&SettingsCommand{}, core.WithGuildOnly()))
}
