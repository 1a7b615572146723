// Package textgen defines the free-text generator consumed by the personality service.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned by generators that are not configured.
var ErrUnavailable = errors.New("textgen: generator unavailable")

// ErrEmptyReply is returned when the backend answers without any text.
var ErrEmptyReply = errors.New("textgen: empty reply")

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role
	Text string
}

// Request is one generation call.
type Request struct {
	// System is the instruction prompt.
	System string
	// Turns alternate starting with RoleUser and end with RoleUser.
	Turns []Turn
	// MaxTokens caps the reply length. Zero means the generator default.
	MaxTokens int
}

// Validate checks the turn ordering invariant.
func (r Request) Validate() error {
	if len(r.Turns) == 0 {
		return errors.New("request must contain at least one turn")
	}
	for i, t := range r.Turns {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if t.Role != want {
			return fmt.Errorf("turn %d: role %q, want %q", i, t.Role, want)
		}
		if strings.TrimSpace(t.Text) == "" {
			return fmt.Errorf("turn %d: text must not be empty", i)
		}
	}
	if r.Turns[len(r.Turns)-1].Role != RoleUser {
		return errors.New("last turn must be from the user")
	}
	return nil
}

// Generator produces text for a request.
//
// Implementations MUST be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Unavailable is the Generator used when no backend is configured. Every call fails
// with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
