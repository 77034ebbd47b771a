package storage

import (
	"encoding/json"
	"fmt"

	"github.com/keshon/datastore"
)

// Storage persists per-guild settings in a JSON-backed datastore, one
// record per guild.
type Storage struct {
	ds *datastore.DataStore
}

// MusicSettings are a guild's playback preferences. Empty strings mean
// unset; Volume 0 means the default.
type MusicSettings struct {
	OutputChannelID string `json:"output_channel_id"`
	LockChannelID   string `json:"lock_channel_id"`
	DJRoleID        string `json:"dj_role_id"`
	Volume          int    `json:"volume"`
}

type Record struct {
	Music MusicSettings `json:"music"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord reads the guild's record, creating an empty one
// the first time the guild is seen. The datastore hands values back as
// generic JSON, so they roundtrip through encoding/json into the typed
// record.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		record := &Record{}
		s.ds.Add(guildID, record)
		return record, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}
	return &record, nil
}

func (s *Storage) saveGuildRecord(guildID string, record *Record) error {
	s.ds.Add(guildID, record)
	return nil
}

// MusicSettings returns the guild's playback preferences.
func (s *Storage) MusicSettings(guildID string) (MusicSettings, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return MusicSettings{}, err
	}
	return record.Music, nil
}

// SetOutputChannel pins the channel the bot announces playback in.
// An empty id clears the pin.
func (s *Storage) SetOutputChannel(guildID, channelID string) error {
	return s.updateMusic(guildID, func(m *MusicSettings) {
		m.OutputChannelID = channelID
	})
}

// SetLockChannel restricts music commands to one text channel.
// An empty id lifts the restriction.
func (s *Storage) SetLockChannel(guildID, channelID string) error {
	return s.updateMusic(guildID, func(m *MusicSettings) {
		m.LockChannelID = channelID
	})
}

// SetDJRole names the role whose holders get relaxed track limits and
// force-skip rights. An empty id clears it.
func (s *Storage) SetDJRole(guildID, roleID string) error {
	return s.updateMusic(guildID, func(m *MusicSettings) {
		m.DJRoleID = roleID
	})
}

// SetVolume remembers the guild's preferred playback volume.
func (s *Storage) SetVolume(guildID string, percent int) error {
	return s.updateMusic(guildID, func(m *MusicSettings) {
		m.Volume = percent
	})
}

func (s *Storage) updateMusic(guildID string, apply func(*MusicSettings)) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	apply(&record.Music)
	return s.saveGuildRecord(guildID, record)
}
