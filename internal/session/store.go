package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

// EventWrapper serializes polymorphic game events to JSONL.
type EventWrapper struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// FileStore handles append-only storage of game events as JSONL.
type FileStore struct {
	file *os.File
}

// NewFileStore opens or creates a JSONL event log at the given path.
func NewFileStore(path string) (*FileStore, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	return &FileStore{file: file}, nil
}

// Append marshals a game Event and appends it as a JSONL line.
func (s *FileStore) Append(evt game.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	wrapper := EventWrapper{
		Type: evt.Type(),
		Data: data,
	}

	line, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal wrapper: %w", err)
	}

	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return err
	}
	return s.file.Sync()
}

// Load replays all events from the JSONL log and returns them.
func (s *FileStore) Load() ([]game.Event, error) {
	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var events []game.Event
	scanner := bufio.NewScanner(s.file)
	for scanner.Scan() {
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode event wrapper: %w", err)
		}

		evt, err := unmarshalEvent(wrapper.Type, wrapper.Data)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return events, scanner.Err()
}

// Close flushes and closes the underlying file.
func (s *FileStore) Close() error {
	return s.file.Close()
}

// unmarshalEvent reconstructs a concrete Event from its type discriminator
// and JSON data.
func unmarshalEvent(typeName string, data json.RawMessage) (game.Event, error) {
	var evt game.Event

	switch typeName {
	case "GameStartedEvent":
		evt = &game.GameStartedEvent{}
	case "GameEndedEvent":
		evt = &game.GameEndedEvent{}
	case "PhaseChangedEvent":
		evt = &game.PhaseChangedEvent{}
	case "TurnAdvancedEvent":
		evt = &game.TurnAdvancedEvent{}
	case "CPGainedEvent":
		evt = &game.CPGainedEvent{}
	case "CPSpentEvent":
		evt = &game.CPSpentEvent{}
	case "SecondaryDrawnEvent":
		evt = &game.SecondaryDrawnEvent{}
	case "SecondaryScoredEvent":
		evt = &game.SecondaryScoredEvent{}
	case "SecondaryDiscardedEvent":
		evt = &game.SecondaryDiscardedEvent{}
	case "PrimaryScoredEvent":
		evt = &game.PrimaryScoredEvent{}
	case "UnitAddedEvent":
		evt = &game.UnitAddedEvent{}
	case "UnitDamagedEvent":
		evt = &game.UnitDamagedEvent{}
	case "UnitDestroyedEvent":
		evt = &game.UnitDestroyedEvent{}
	case "ObjectiveControlChangedEvent":
		evt = &game.ObjectiveControlChangedEvent{}
	case "MissionSetEvent":
		evt = &game.MissionSetEvent{}
	case "MissionModeSetEvent":
		evt = &game.MissionModeSetEvent{}
	case "VPCorrectedEvent":
		evt = &game.VPCorrectedEvent{}
	case "FirstPlayerSetEvent":
		evt = &game.FirstPlayerSetEvent{}
	case "TranscriptLoggedEvent":
		evt = &game.TranscriptLoggedEvent{}
	case "NoteEvent":
		evt = &game.NoteEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", typeName)
	}

	if err := json.Unmarshal(data, evt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", typeName, err)
	}
	return evt, nil
}
