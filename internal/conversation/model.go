// Package conversation holds the multi-thread, append-only conversation model.
package conversation

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
	"github.com/tigosprojects/tigos/internal/history"
)

// Role identifies the author of a message
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns the stored form of the role
func (r Role) String() string {
	if r == RoleAssistant {
		return history.TypeAI
	}
	return history.TypeUser
}

// Message is a single entry of a thread. Image is nil when the message has none.
type Message struct {
	Role  Role
	Text  string
	Image []byte
}

// UserMessage builds a user text message
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage builds an assistant text message
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// Thread is a read-only copy of one conversation
type Thread struct {
	ID       string
	Messages []Message
}

// ThreadSummary is the listing form of a thread
type ThreadSummary struct {
	ID       string
	Title    string
	Messages int
	Current  bool
}

// Persister saves the chat history document after every mutation
type Persister interface {
	Save(history.ChatHistory) error
}

// PersistFunc adapts a function to Persister
type PersistFunc func(history.ChatHistory) error

// Save calls f
func (f PersistFunc) Save(h history.ChatHistory) error {
	return f(h)
}

// NewID generates thread ids
func NewID() string {
	return uuid.New().String()
}

// Model is the set of threads plus the current-thread pointer.
// It always holds at least one thread and current always resolves.
// Model is not safe for concurrent use; one owner goroutine mutates it.
type Model struct {
	threads map[string][]Message
	order   []string
	current string
	persist Persister
	newID   func() string
}

// New builds a model from a stored document. When the document has no thread
// one is created; when the current id is dangling the newest thread becomes
// current. Either repair is persisted.
func New(persist Persister, snapshot history.ChatHistory, newID func() string) (*Model, error) {
	if newID == nil {
		newID = NewID
	}

	m := &Model{
		threads: make(map[string][]Message, len(snapshot.Chats)),
		persist: persist,
		newID:   newID,
	}

	for _, id := range snapshot.ThreadIDs() {
		msgs, err := decodeMessages(snapshot.Chats[id])
		if err != nil {
			return nil, apierrors.NewCorruptError("thread "+id, err)
		}
		m.threads[id] = msgs
		m.order = append(m.order, id)
	}

	repaired := false
	switch {
	case len(m.order) == 0:
		m.addThread()
		repaired = true
	case !m.has(snapshot.CurrentChatID):
		m.current = m.order[len(m.order)-1]
		repaired = true
	default:
		m.current = snapshot.CurrentChatID
	}

	if repaired {
		if err := m.save(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// CreateThread adds an empty thread and makes it current. The thread exists
// even when persisting fails.
func (m *Model) CreateThread() (string, error) {
	id := m.addThread()
	return id, m.save()
}

// SwitchThread makes id the current thread. An unknown id leaves the pointer untouched.
func (m *Model) SwitchThread(id string) error {
	if !m.has(id) {
		return apierrors.NewNotFoundError("thread", id)
	}
	m.current = id
	return m.save()
}

// AppendMessage appends msg to thread id
func (m *Model) AppendMessage(id string, msg Message) error {
	if !m.has(id) {
		return apierrors.NewNotFoundError("thread", id)
	}
	m.threads[id] = append(m.threads[id], msg)
	return m.save()
}

// CurrentThread returns the current thread id
func (m *Model) CurrentThread() string {
	return m.current
}

// Thread returns a copy of thread id
func (m *Model) Thread(id string) (Thread, error) {
	msgs, ok := m.threads[id]
	if !ok {
		return Thread{}, apierrors.NewNotFoundError("thread", id)
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Thread{ID: id, Messages: out}, nil
}

// Len returns the number of messages in thread id, or -1 when it does not exist
func (m *Model) Len(id string) int {
	msgs, ok := m.threads[id]
	if !ok {
		return -1
	}
	return len(msgs)
}

// Threads lists every thread in creation order
func (m *Model) Threads() []ThreadSummary {
	out := make([]ThreadSummary, 0, len(m.order))
	for _, id := range m.order {
		msgs := m.threads[id]
		out = append(out, ThreadSummary{
			ID:       id,
			Title:    title(msgs),
			Messages: len(msgs),
			Current:  id == m.current,
		})
	}
	return out
}

// Snapshot renders the model as the stored document
func (m *Model) Snapshot() history.ChatHistory {
	h := history.ChatHistory{
		Chats:         make(map[string][]history.StoredMessage, len(m.threads)),
		CurrentChatID: m.current,
		Order:         append([]string(nil), m.order...),
	}
	for id, msgs := range m.threads {
		h.Chats[id] = encodeMessages(msgs)
	}
	return h
}

func (m *Model) has(id string) bool {
	_, ok := m.threads[id]
	return ok
}

func (m *Model) addThread() string {
	id := m.newID()
	for m.has(id) {
		id = m.newID()
	}
	m.threads[id] = []Message{}
	m.order = append(m.order, id)
	m.current = id
	return id
}

func (m *Model) save() error {
	if m.persist == nil {
		return nil
	}
	return m.persist.Save(m.Snapshot())
}

func title(msgs []Message) string {
	for _, msg := range msgs {
		if msg.Role == RoleUser && msg.Text != "" {
			return history.Truncate(msg.Text, 40)
		}
	}
	return "New chat"
}

func encodeMessages(msgs []Message) []history.StoredMessage {
	out := make([]history.StoredMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = history.StoredMessage{Type: msg.Role.String(), Text: msg.Text}
		if msg.Image != nil {
			out[i].ImageData = base64.StdEncoding.EncodeToString(msg.Image)
		}
	}
	return out
}

func decodeMessages(stored []history.StoredMessage) ([]Message, error) {
	out := make([]Message, len(stored))
	for i, sm := range stored {
		switch sm.Type {
		case history.TypeUser:
			out[i].Role = RoleUser
		case history.TypeAI:
			out[i].Role = RoleAssistant
		default:
			return nil, fmt.Errorf("message %d: unknown type %q", i, sm.Type)
		}
		out[i].Text = sm.Text
		if sm.ImageData != "" {
			img, err := base64.StdEncoding.DecodeString(sm.ImageData)
			if err != nil {
				return nil, fmt.Errorf("message %d: %w", i, err)
			}
			out[i].Image = img
		}
	}
	return out, nil
}
