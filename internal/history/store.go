// Package history provides the JSON-backed persistence store for settings,
// chat threads, image history and text-to-speech history.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

// Stored message types
const (
	TypeUser = "user"
	TypeAI   = "ai"
)

// LegacyThreadID is the id given to a flat single-chat history on migration
const LegacyThreadID = "legacy"

// Settings is the user profile collection
type Settings struct {
	Username   string  `json:"username"`
	ProfilePic *string `json:"profile_pic"`
	Theme      string  `json:"theme"`
}

// DefaultSettings returns the settings used when no settings file exists
func DefaultSettings() Settings {
	return Settings{
		Username: "User",
		Theme:    "Dark",
	}
}

// StoredMessage is the on-disk form of a conversation message
type StoredMessage struct {
	Type      string `json:"type"` // "user" or "ai"
	Text      string `json:"text"`
	ImageData string `json:"image_data,omitempty"` // base64
}

// ChatHistory is the on-disk form of all conversation threads
type ChatHistory struct {
	Chats         map[string][]StoredMessage `json:"chats"`
	CurrentChatID string                     `json:"current_chat_id"`
	Order         []string                   `json:"order,omitempty"` // thread ids in creation order
}

// UnmarshalJSON accepts both the threaded document and the legacy flat
// message array, which becomes a single thread.
func (h *ChatHistory) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var flat []StoredMessage
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return err
		}
		if err := validateMessages(flat); err != nil {
			return err
		}
		if flat == nil {
			flat = []StoredMessage{}
		}
		*h = ChatHistory{
			Chats:         map[string][]StoredMessage{LegacyThreadID: flat},
			CurrentChatID: LegacyThreadID,
			Order:         []string{LegacyThreadID},
		}
		return nil
	}

	type plain ChatHistory
	var doc plain
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return err
	}
	if doc.Chats == nil {
		doc.Chats = make(map[string][]StoredMessage)
	}
	for id, msgs := range doc.Chats {
		if err := validateMessages(msgs); err != nil {
			return fmt.Errorf("thread %s: %w", id, err)
		}
		if msgs == nil {
			doc.Chats[id] = []StoredMessage{}
		}
	}
	*h = ChatHistory(doc)
	return nil
}

// ThreadIDs returns every thread id in creation order. Ids missing from
// Order (hand-edited files) are appended in sorted order.
func (h ChatHistory) ThreadIDs() []string {
	ids := make([]string, 0, len(h.Chats))
	seen := make(map[string]bool, len(h.Chats))
	for _, id := range h.Order {
		if _, ok := h.Chats[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}

	var rest []string
	for id := range h.Chats {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

func validateMessages(msgs []StoredMessage) error {
	for i, m := range msgs {
		if m.Type != TypeUser && m.Type != TypeAI {
			return fmt.Errorf("message %d: unknown type %q", i, m.Type)
		}
	}
	return nil
}

// ImageRecord is one entry of the image generation history
type ImageRecord struct {
	Prompt     string `json:"prompt"`
	Model      string `json:"model"`
	Resolution string `json:"resolution"`
	NoLogo     bool   `json:"nologo"`
}

// Collection is a single JSON document persisted at a fixed path
type Collection[T any] struct {
	path string
}

// NewCollection binds a collection to a file path
func NewCollection[T any](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Path returns the backing file path
func (c *Collection[T]) Path() string {
	return c.path
}

// Exists reports whether the backing file is present
func (c *Collection[T]) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}

// Load reads the collection. A missing file yields def; a file that cannot be
// decoded yields a corrupt StorageError.
func (c *Collection[T]) Load(def T) (T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return def, apierrors.NewStorageError("read", c.path, err)
	}

	v := def
	if err := json.Unmarshal(data, &v); err != nil {
		return def, apierrors.NewCorruptError(c.path, err)
	}
	return v, nil
}

// Save overwrites the backing file with v
func (c *Collection[T]) Save(v T) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return apierrors.NewStorageError("encode", c.path, err)
	}
	if err := writeFileAtomic(c.path, data, 0o644); err != nil {
		return apierrors.NewStorageError("write", c.path, err)
	}
	return nil
}

// FileNames are the file names of the four collections inside the data dir
type FileNames struct {
	Settings string `yaml:"settings"`
	Chats    string `yaml:"chats"`
	Images   string `yaml:"images"`
	TTS      string `yaml:"tts"`
}

// DefaultFileNames returns the file names the desktop client used
func DefaultFileNames() FileNames {
	return FileNames{
		Settings: "user_settings.json",
		Chats:    "chat_history.json",
		Images:   "image_history.json",
		TTS:      "tts_history.json",
	}
}

// Snapshot is the content of all four collections
type Snapshot struct {
	Settings Settings
	Chats    ChatHistory
	Images   []ImageRecord
	TTS      []string
}

// Store groups the four collections under one data directory.
// It takes no locks: a single owner goroutine performs every load and save.
type Store struct {
	dir      string
	settings *Collection[Settings]
	chats    *Collection[ChatHistory]
	images   *Collection[[]ImageRecord]
	tts      *Collection[[]string]
}

// NewStore creates a store with the default file names
func NewStore(dir string) (*Store, error) {
	return NewStoreWithFiles(dir, DefaultFileNames())
}

// NewStoreWithFiles creates a store, creating dir if needed. Empty names fall
// back to the defaults.
func NewStoreWithFiles(dir string, names FileNames) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	def := DefaultFileNames()
	if names.Settings == "" {
		names.Settings = def.Settings
	}
	if names.Chats == "" {
		names.Chats = def.Chats
	}
	if names.Images == "" {
		names.Images = def.Images
	}
	if names.TTS == "" {
		names.TTS = def.TTS
	}

	return &Store{
		dir:      dir,
		settings: NewCollection[Settings](filepath.Join(dir, names.Settings)),
		chats:    NewCollection[ChatHistory](filepath.Join(dir, names.Chats)),
		images:   NewCollection[[]ImageRecord](filepath.Join(dir, names.Images)),
		tts:      NewCollection[[]string](filepath.Join(dir, names.TTS)),
	}, nil
}

// Dir returns the data directory
func (s *Store) Dir() string {
	return s.dir
}

// Settings returns the settings collection
func (s *Store) Settings() *Collection[Settings] {
	return s.settings
}

// Chats returns the chat history collection
func (s *Store) Chats() *Collection[ChatHistory] {
	return s.chats
}

// Images returns the image history collection
func (s *Store) Images() *Collection[[]ImageRecord] {
	return s.images
}

// TTS returns the text-to-speech history collection
func (s *Store) TTS() *Collection[[]string] {
	return s.tts
}

// LoadAll loads every collection, substituting defaults for absent files
func (s *Store) LoadAll() (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Settings, err = s.settings.Load(DefaultSettings()); err != nil {
		return Snapshot{}, err
	}
	if snap.Chats, err = s.chats.Load(ChatHistory{}); err != nil {
		return Snapshot{}, err
	}
	if snap.Chats.Chats == nil {
		snap.Chats.Chats = make(map[string][]StoredMessage)
	}
	if snap.Images, err = s.images.Load([]ImageRecord{}); err != nil {
		return Snapshot{}, err
	}
	if snap.Images == nil {
		snap.Images = []ImageRecord{}
	}
	if snap.TTS, err = s.tts.Load([]string{}); err != nil {
		return Snapshot{}, err
	}
	if snap.TTS == nil {
		snap.TTS = []string{}
	}

	return snap, nil
}

// SaveAll writes every collection, returning the first failure
func (s *Store) SaveAll(snap Snapshot) error {
	if err := s.settings.Save(snap.Settings); err != nil {
		return err
	}
	if err := s.chats.Save(snap.Chats); err != nil {
		return err
	}
	if err := s.images.Save(snap.Images); err != nil {
		return err
	}
	return s.tts.Save(snap.TTS)
}
