package history

import (
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

// minPrefixLen is the shortest id prefix accepted as a reference
const minPrefixLen = 4

// Resolver resolves user-friendly references to thread IDs
type Resolver struct {
	history ChatHistory
}

// NewResolver creates a resolver over a chat history document
func NewResolver(h ChatHistory) *Resolver {
	return &Resolver{history: h}
}

// Resolve converts a user-friendly reference to a thread ID
//
// Supported references:
//   - "@current" - the thread currently selected
//   - "@last" - most recently created thread
//   - "@first" - oldest thread
//   - "1", "2", "3" - by index (1-based, creation order)
//   - "3f2a..." - unique id prefix of at least 4 characters, or a full id
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return "", apierrors.NewValidationError("reference", "", "empty reference")
	}

	ids := r.history.ThreadIDs()
	if len(ids) == 0 {
		return "", apierrors.NewNotFoundError("thread", ref)
	}

	switch strings.ToLower(ref) {
	case "@current":
		if _, ok := r.history.Chats[r.history.CurrentChatID]; ok {
			return r.history.CurrentChatID, nil
		}
		return "", apierrors.NewNotFoundError("thread", ref)
	case "@last":
		return ids[len(ids)-1], nil
	case "@first":
		return ids[0], nil
	}

	if _, ok := r.history.Chats[ref]; ok {
		return ref, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(ids) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(ids))
		}
		return ids[index-1], nil
	}

	if len(ref) < minPrefixLen {
		return "", apierrors.NewNotFoundError("thread", ref)
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", apierrors.NewNotFoundError("thread", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("multiple threads match '%s': %s. Use a longer prefix",
			ref, strings.Join(matches, ", "))
	}
}

// ListAliases returns information about supported references
func ListAliases() string {
	return `Supported references:
  @current       Currently selected thread
  @last          Most recently created thread
  @first         Oldest thread
  1, 2, 3        By index (1-based, oldest first)
  3f2a...        Thread id or unique id prefix (4+ characters)`
}
