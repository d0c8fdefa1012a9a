package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petasbytes/sandbox-agent/internal/conversation"
	"github.com/spf13/afero"
)

// DefaultPath is where the CLI keeps the log unless configured otherwise.
const DefaultPath = ".agent/conversation.json"

// Store reads and writes one conversation file.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{fs: fs, path: path}
}

func (s *Store) Path() string { return s.path }

// Load returns the stored messages. A missing file is an empty log.
func (s *Store) Load() ([]conversation.Message, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []conversation.Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	for i, m := range msgs {
		switch m.Role {
		case conversation.RoleUser, conversation.RoleAssistant, conversation.RoleTool:
		default:
			return nil, fmt.Errorf("decode %s: message %d has unknown role %q", s.path, i, m.Role)
		}
	}
	return msgs, nil
}

// Save replaces the stored log with msgs.
func (s *Store) Save(msgs []conversation.Message) error {
	if msgs == nil {
		msgs = []conversation.Message{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.path)
}

// LoadConversation reads path from the OS filesystem.
func LoadConversation(path string) ([]conversation.Message, error) {
	return NewStore(afero.NewOsFs(), path).Load()
}

// SaveConversation writes msgs to path on the OS filesystem.
func SaveConversation(path string, msgs []conversation.Message) error {
	return NewStore(afero.NewOsFs(), path).Save(msgs)
}
