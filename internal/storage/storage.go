// Package storage persists per-guild state (button configurations and the
// command history log) in a JSON file datastore.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"server-actions/datastore"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// Record is everything stored for one guild. Buttons hold raw config
// documents keyed by button id; they are parsed on read so a broken document
// fails the press that uses it, not the whole guild record.
type Record struct {
	Buttons             map[string]json.RawMessage `json:"buttons"`
	CommandsHistoryList []CommandHistoryRecord     `json:"cmd_history"`
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

// getOrCreateGuildRecord loads a guild record, creating an empty one on first
// touch. The datastore holds values as raw JSON maps after a reload, so the
// record goes through a marshal round-trip to come back typed.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{
			Buttons:             map[string]json.RawMessage{},
			CommandsHistoryList: []CommandHistoryRecord{},
		}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if record.Buttons == nil {
		record.Buttons = map[string]json.RawMessage{}
	}
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

// AppendCommandToHistory appends a command history record for a guild.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, command)
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}
