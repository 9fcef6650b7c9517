package chat

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("/summarize the meeting notes")
	require.True(t, ok)
	assert.Equal(t, "summarize", cmd.Name)
	assert.Equal(t, "the meeting notes", cmd.Args)
}

func TestParseCommandPlainTextIsNotACommand(t *testing.T) {
	_, ok := ParseCommand("hello there")
	assert.False(t, ok)

	// A slash later in the message does not count.
	_, ok = ParseCommand("either/or")
	assert.False(t, ok)
}

func TestParseCommandWithoutArgs(t *testing.T) {
	cmd, ok := ParseCommand("/plan")
	require.True(t, ok)
	assert.Equal(t, "plan", cmd.Name)
	assert.Equal(t, "", cmd.Args)
}

func TestRewriteKnownCommands(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"/summarize my week", "Please provide a concise summary of: my week"},
		{"/translate hola mundo", "Please translate the following to the target language: hola mundo"},
		{"/plan a trip to Helsinki", "Please create a detailed plan or outline for: a trip to Helsinki"},
		{"/mood feeling great", "I'd like to log my mood. feeling great"},
		{"/remind call mom tomorrow", "Please help me set a reminder: call mom tomorrow"},
	}

	for _, tc := range cases {
		cmd, ok := ParseCommand(tc.content)
		require.True(t, ok, tc.content)
		assert.Equal(t, tc.want, cmd.Rewrite())
	}
}

func TestRewriteUnknownCommandFallsBackToArgs(t *testing.T) {
	cmd, ok := ParseCommand("/frobnicate the widget")
	require.True(t, ok)
	assert.Equal(t, "the widget", cmd.Rewrite())
}

func TestTitleFromContent(t *testing.T) {
	assert.Equal(t, "Hello world", TitleFromContent("  Hello world  "))
	assert.Equal(t, "New conversation", TitleFromContent("   "))

	long := "This message is definitely much longer than the fifty character cap"
	title := TitleFromContent(long)
	assert.Len(t, title, 50)
	assert.Equal(t, long[:50], title)
}

func TestTitleFromContentCutsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 60)
	title := TitleFromContent(long)
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, 50, utf8.RuneCountInString(title))
	assert.Equal(t, strings.Repeat("é", 50), title)
}

func TestValidPersonality(t *testing.T) {
	for _, p := range []Personality{PersonalityCasual, PersonalityFunny, PersonalityProfessional, PersonalityMotivational} {
		assert.True(t, ValidPersonality(p))
	}
	assert.False(t, ValidPersonality(Personality("sarcastic")))
}

func TestSystemPromptFallsBackToCasual(t *testing.T) {
	assert.Equal(t, SystemPrompt(PersonalityCasual), SystemPrompt(Personality("")))
	assert.NotEqual(t, SystemPrompt(PersonalityCasual), SystemPrompt(PersonalityProfessional))
}
