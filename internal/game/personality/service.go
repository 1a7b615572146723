// Package personality generates creature personalities once and runs chats with owned creatures.
package personality

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokegen/internal/game/inventory"
	"github.com/cory-johannsen/pokegen/internal/textgen"
)

var (
	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("personality: message must not be empty")
	// ErrChatInFlight is returned while the previous reply of a conversation is pending.
	ErrChatInFlight = errors.New("personality: a reply is already pending")
)

// State is the personality lifecycle of one creature.
type State int

const (
	Unrequested State = iota
	Pending
	Filled
)

func (s State) String() string {
	switch s {
	case Unrequested:
		return "unrequested"
	case Pending:
		return "pending"
	case Filled:
		return "filled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options tunes a Service.
type Options struct {
	// PersonalityTokens caps the personality reply. Zero means the generator default.
	PersonalityTokens int
	// ChatTokens caps each chat reply. Zero means the generator default.
	ChatTokens int
}

// Service enriches owned creatures with a generated personality and answers chats.
// It is safe for concurrent use.
type Service struct {
	store  *inventory.Store
	gen    textgen.Generator
	opts   Options
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]chan struct{}
}

// NewService creates a Service.
//
// Precondition: store, gen and logger must be non-nil.
func NewService(store *inventory.Store, gen textgen.Generator, opts Options, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		gen:     gen,
		opts:    opts,
		logger:  logger,
		pending: make(map[string]chan struct{}),
	}
}

// State reports the personality state of creature id. Unknown creatures are Unrequested.
func (s *Service) State(id string) State {
	if c, ok := s.store.Get(id); ok && c.Personality != "" {
		return Filled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; ok {
		return Pending
	}
	return Unrequested
}

// Ensure returns the personality of creature id, generating and recording it on first use.
// Concurrent calls for the same creature share one generation.
//
// Postcondition: on success the stored creature carries the returned personality. A
// generator failure records Placeholder(name) and is not returned as an error.
func (s *Service) Ensure(ctx context.Context, id string) (string, error) {
	for {
		c, ok := s.store.Get(id)
		if !ok {
			return "", fmt.Errorf("personality of %q: %w", id, inventory.ErrNotFound)
		}
		if c.Personality != "" {
			return c.Personality, nil
		}

		s.mu.Lock()
		wait, busy := s.pending[id]
		if !busy {
			s.pending[id] = make(chan struct{})
		}
		s.mu.Unlock()

		if busy {
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return s.generate(ctx, id)
	}
}

func (s *Service) generate(ctx context.Context, id string) (string, error) {
	defer func() {
		s.mu.Lock()
		close(s.pending[id])
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	c, ok := s.store.Get(id)
	if !ok {
		return "", fmt.Errorf("personality of %q: %w", id, inventory.ErrNotFound)
	}
	text, err := s.gen.Generate(ctx, textgen.Request{
		Turns:     []textgen.Turn{{Role: textgen.RoleUser, Text: personalityPrompt(c)}},
		MaxTokens: s.opts.PersonalityTokens,
	})
	switch {
	case errors.Is(err, textgen.ErrEmptyReply):
		text = emptyPersonality(c.Name)
	case err != nil:
		s.logger.Warn("personality generation failed, recording placeholder",
			zap.String("creature_id", id),
			zap.Error(err),
		)
		text = Placeholder(c.Name)
	}

	if err := s.store.SetPersonality(id, text); err != nil {
		if errors.Is(err, inventory.ErrPersonalitySet) {
			if cur, ok := s.store.Get(id); ok {
				return cur.Personality, nil
			}
		}
		return "", err
	}
	s.logger.Debug("personality recorded", zap.String("creature_id", id))
	return text, nil
}

// Conversation is the chat history with one creature. It lives only in memory.
type Conversation struct {
	CreatureID string

	mu      sync.Mutex
	turns   []textgen.Turn
	waiting bool
}

// NewConversation starts an empty conversation with creature id.
func NewConversation(id string) *Conversation {
	return &Conversation{CreatureID: id}
}

// Turns returns a copy of the history, oldest first.
func (c *Conversation) Turns() []textgen.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]textgen.Turn(nil), c.turns...)
}

// Chat sends message to the conversation's creature and returns its reply.
//
// Precondition: message is not blank; no reply is pending on conv.
// Postcondition: on success the message and reply are appended to conv. A generator
// failure yields ChatPlaceholder(name) as the reply and is not returned as an error.
func (s *Service) Chat(ctx context.Context, conv *Conversation, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	c, ok := s.store.Get(conv.CreatureID)
	if !ok {
		return "", fmt.Errorf("chat with %q: %w", conv.CreatureID, inventory.ErrNotFound)
	}

	conv.mu.Lock()
	if conv.waiting {
		conv.mu.Unlock()
		return "", ErrChatInFlight
	}
	conv.waiting = true
	history := append([]textgen.Turn(nil), conv.turns...)
	conv.mu.Unlock()

	reply, err := s.gen.Generate(ctx, textgen.Request{
		System:    chatSystemPrompt(c),
		Turns:     append(history, textgen.Turn{Role: textgen.RoleUser, Text: message}),
		MaxTokens: s.opts.ChatTokens,
	})
	switch {
	case errors.Is(err, textgen.ErrEmptyReply):
		reply = emptyReply
	case err != nil:
		s.logger.Warn("chat generation failed, replying with placeholder",
			zap.String("creature_id", c.ID),
			zap.Error(err),
		)
		reply = ChatPlaceholder(c.Name)
	}

	conv.mu.Lock()
	conv.turns = append(conv.turns,
		textgen.Turn{Role: textgen.RoleUser, Text: message},
		textgen.Turn{Role: textgen.RoleAssistant, Text: reply},
	)
	conv.waiting = false
	conv.mu.Unlock()
	return reply, nil
}
