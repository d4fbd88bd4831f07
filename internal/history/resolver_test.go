package history

import (
	"strings"
	"testing"

	apierrors "github.com/tigosprojects/tigos/internal/errors"
)

func resolverHistory() ChatHistory {
	return ChatHistory{
		Chats: map[string][]StoredMessage{
			"aaaa1111-0000": {},
			"aaaa2222-0000": {},
			"bbbb3333-0000": {{Type: TypeUser, Text: "hello"}},
		},
		CurrentChatID: "aaaa2222-0000",
		Order:         []string{"aaaa1111-0000", "aaaa2222-0000", "bbbb3333-0000"},
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(resolverHistory())

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"current", "@current", "aaaa2222-0000"},
		{"last", "@last", "bbbb3333-0000"},
		{"first uppercase", "@FIRST", "aaaa1111-0000"},
		{"index 1", "1", "aaaa1111-0000"},
		{"index 3", " 3 ", "bbbb3333-0000"},
		{"exact id", "aaaa1111-0000", "aaaa1111-0000"},
		{"unique prefix", "bbbb", "bbbb3333-0000"},
		{"longer prefix", "aaaa2", "aaaa2222-0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	r := NewResolver(resolverHistory())

	if _, err := r.Resolve(""); err == nil {
		t.Error("expected error for empty reference")
	}

	if _, err := r.Resolve("0"); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("expected out of range error, got %v", err)
	}

	if _, err := r.Resolve("aaa"); !apierrors.IsNotFound(err) {
		t.Errorf("short prefix should be not found, got %v", err)
	}

	if _, err := r.Resolve("cccc"); !apierrors.IsNotFound(err) {
		t.Errorf("unknown prefix should be not found, got %v", err)
	}

	_, err := r.Resolve("aaaa")
	if err == nil || !strings.Contains(err.Error(), "multiple threads") {
		t.Errorf("expected ambiguity error, got %v", err)
	}
}

func TestResolver_EmptyHistory(t *testing.T) {
	r := NewResolver(ChatHistory{})

	if _, err := r.Resolve("@last"); !apierrors.IsNotFound(err) {
		t.Errorf("expected not found on empty history, got %v", err)
	}
}

func TestResolver_DanglingCurrent(t *testing.T) {
	h := resolverHistory()
	h.CurrentChatID = "gone"

	if _, err := NewResolver(h).Resolve("@current"); !apierrors.IsNotFound(err) {
		t.Errorf("expected not found for dangling current, got %v", err)
	}
}

func TestListAliases(t *testing.T) {
	aliases := ListAliases()
	for _, want := range []string{"@current", "@last", "@first"} {
		if !strings.Contains(aliases, want) {
			t.Errorf("ListAliases() missing %s", want)
		}
	}
}
