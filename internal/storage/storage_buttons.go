package storage

import (
	"encoding/json"
	"sort"

	"server-actions/internal/actions"
	"server-actions/internal/platform"
)

// ButtonConfig loads and validates one button's stored document. A missing
// button is a NotFoundError so the press handler can tell "deleted button"
// apart from "broken config".
func (s *Storage) ButtonConfig(guildID, buttonID string) (*actions.ButtonConfig, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	raw, exists := record.Buttons[buttonID]
	if !exists {
		return nil, &platform.NotFoundError{Resource: "button", ID: buttonID}
	}
	return actions.ParseButtonConfig(raw)
}

// SetButton validates and stores a button config, replacing any previous one
// under the same id.
func (s *Storage) SetButton(guildID, buttonID string, raw []byte) (*actions.ButtonConfig, error) {
	cfg, err := actions.ParseButtonConfig(raw)
	if err != nil {
		return nil, err
	}

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	record.Buttons[buttonID] = json.RawMessage(raw)
	s.ds.Add(guildID, record)
	return cfg, nil
}

// DeleteButton removes a stored button. Deleting an unknown id is a
// NotFoundError so callers can report it.
func (s *Storage) DeleteButton(guildID, buttonID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if _, exists := record.Buttons[buttonID]; !exists {
		return &platform.NotFoundError{Resource: "button", ID: buttonID}
	}
	delete(record.Buttons, buttonID)
	s.ds.Add(guildID, record)
	return nil
}

// ListButtons returns the guild's button ids in stable order.
func (s *Storage) ListButtons(guildID string) ([]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(record.Buttons))
	for id := range record.Buttons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
