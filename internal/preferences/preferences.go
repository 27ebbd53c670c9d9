package preferences

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the preferences file name inside the data directory.
const FileName = "preferences.yaml"

// Preferences holds the user-editable countdown settings.
type Preferences struct {
	CountdownEnabled        bool
	CountdownEndTime        int64
	CountdownWarningEnabled bool
}

// Defaults returns the value of every key when it is absent from the file.
func Defaults() Preferences {
	return Preferences{
		CountdownEnabled:        false,
		CountdownEndTime:        0,
		CountdownWarningEnabled: true,
	}
}

// Store reads and writes Preferences.
type Store interface {
	Load() (Preferences, error)
	Save(Preferences) error
}

// pointers distinguish an absent key from a zero value
type yamlPreferences struct {
	CountdownEnabled        *bool  `yaml:"countdown_enabled,omitempty"`
	CountdownEndTime        *int64 `yaml:"countdown_end_time,omitempty"`
	CountdownWarningEnabled *bool  `yaml:"countdown_warning_enabled,omitempty"`
}

// FileStore keeps Preferences in a YAML file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file. A missing file yields Defaults.
func (s *FileStore) Load() (Preferences, error) {
	prefs := Defaults()

	rawData, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read preferences file: %w", err)
	}

	var fileData yamlPreferences
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return prefs, fmt.Errorf("parse preferences yaml: %w", err)
	}

	if fileData.CountdownEnabled != nil {
		prefs.CountdownEnabled = *fileData.CountdownEnabled
	}
	if fileData.CountdownEndTime != nil {
		prefs.CountdownEndTime = *fileData.CountdownEndTime
	}
	if fileData.CountdownWarningEnabled != nil {
		prefs.CountdownWarningEnabled = *fileData.CountdownWarningEnabled
	}
	return prefs, nil
}

func (s *FileStore) Save(prefs Preferences) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	fileData := yamlPreferences{
		CountdownEnabled:        &prefs.CountdownEnabled,
		CountdownEndTime:        &prefs.CountdownEndTime,
		CountdownWarningEnabled: &prefs.CountdownWarningEnabled,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal preferences yaml: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, serialized, 0o644); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
