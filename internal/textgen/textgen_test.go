package textgen_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/pokegen/internal/textgen"
)

func TestRequestValidate(t *testing.T) {
	ok := textgen.Request{Turns: []textgen.Turn{
		{Role: textgen.RoleUser, Text: "hi"},
		{Role: textgen.RoleAssistant, Text: "pika!"},
		{Role: textgen.RoleUser, Text: "again"},
	}}
	assert.NoError(t, ok.Validate())

	bad := []textgen.Request{
		{},
		{Turns: []textgen.Turn{{Role: textgen.RoleAssistant, Text: "x"}}},
		{Turns: []textgen.Turn{{Role: textgen.RoleUser, Text: " "}}},
		{Turns: []textgen.Turn{{Role: textgen.RoleUser, Text: "a"}, {Role: textgen.RoleAssistant, Text: "b"}}},
		{Turns: []textgen.Turn{{Role: textgen.RoleUser, Text: "a"}, {Role: textgen.RoleUser, Text: "b"}}},
	}
	for i, r := range bad {
		assert.Error(t, r.Validate(), "case %d", i)
	}
}

func TestUnavailable(t *testing.T) {
	_, err := textgen.Unavailable{}.Generate(context.Background(), textgen.Request{})
	assert.ErrorIs(t, err, textgen.ErrUnavailable)
}
