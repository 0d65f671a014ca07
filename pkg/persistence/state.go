package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/modemd-project/modemd-go/pkg/settings"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// AgentState contains the runtime state for the agent.
type AgentState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// SignalRates maps device IDs to their configured signal polling
	// rate in seconds. Rates are persisted so polling resumes at the
	// configured rate after restart.
	SignalRates map[string]uint32 `json:"signal_rates,omitempty"`

	// UpdateSettings contains the last applied firmware update
	// settings per device ID.
	UpdateSettings map[string]UpdateRecord `json:"update_settings,omitempty"`
}

// UpdateRecord mirrors the firmware update settings for JSON
// serialization.
type UpdateRecord struct {
	// Method is the firmware update method discriminant.
	Method uint32 `json:"method"`

	// FastbootAT is the AT command rebooting into fastboot mode.
	// Only present for the fastboot method.
	FastbootAT string `json:"fastboot_at,omitempty"`
}

// AgentStateStore manages persistence of agent state to a JSON file.
type AgentStateStore struct {
	mu   sync.Mutex
	path string
}

// NewAgentStateStore creates a new agent state store.
func NewAgentStateStore(path string) *AgentStateStore {
	return &AgentStateStore{path: path}
}

// Save persists the agent state to disk.
func (s *AgentStateStore) Save(state *AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the agent state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *AgentStateStore) Load() (*AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &AgentState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// SetSignalRate records a device's polling rate and saves immediately.
func (s *AgentStateStore) SetSignalRate(deviceID string, rate uint32) error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	if state == nil {
		state = &AgentState{}
	}
	if state.SignalRates == nil {
		state.SignalRates = make(map[string]uint32)
	}
	if rate == 0 {
		delete(state.SignalRates, deviceID)
	} else {
		state.SignalRates[deviceID] = rate
	}
	state.SavedAt = time.Now()
	return s.Save(state)
}

// SignalRate returns a device's persisted polling rate, 0 if none.
func (s *AgentStateStore) SignalRate(deviceID string) (uint32, error) {
	state, err := s.Load()
	if err != nil {
		return 0, err
	}
	if state == nil {
		return 0, nil
	}
	return state.SignalRates[deviceID], nil
}

// SetUpdateSettings records a device's firmware update settings and
// saves immediately. A nil value removes the record.
func (s *AgentStateStore) SetUpdateSettings(deviceID string, us *settings.UpdateSettings) error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	if state == nil {
		state = &AgentState{}
	}
	if state.UpdateSettings == nil {
		state.UpdateSettings = make(map[string]UpdateRecord)
	}
	if us == nil {
		delete(state.UpdateSettings, deviceID)
	} else {
		state.UpdateSettings[deviceID] = UpdateRecord{
			Method:     uint32(us.Method()),
			FastbootAT: us.FastbootAT(),
		}
	}
	state.SavedAt = time.Now()
	return s.Save(state)
}

// UpdateSettings returns a device's persisted firmware update settings,
// nil if none were recorded.
func (s *AgentStateStore) UpdateSettings(deviceID string) (*settings.UpdateSettings, error) {
	state, err := s.Load()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	rec, ok := state.UpdateSettings[deviceID]
	if !ok {
		return nil, nil
	}
	us := settings.NewUpdateSettings(settings.UpdateMethod(rec.Method))
	if rec.FastbootAT != "" {
		if err := us.SetFastbootAT(rec.FastbootAT); err != nil {
			return nil, err
		}
	}
	return us, nil
}

// Clear removes the state file.
func (s *AgentStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
