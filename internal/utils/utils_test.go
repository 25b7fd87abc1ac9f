package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello world", Truncate("hello world", 0))
	assert.Equal(t, "hello world", Truncate("hello world", 11))
	assert.Equal(t, "hello...", Truncate("hello world", 6))
	assert.Equal(t, "héll...", Truncate("héllo", 4))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Invoice from GOOGLE", "google"))
	assert.True(t, ContainsFold("anything", ""))
	assert.False(t, ContainsFold("Invoice", "receipt"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```{\"a\":1}```"))
	assert.Equal(t, "plain", StripCodeFence("  plain "))
}

func TestNormalizeModelToken(t *testing.T) {
	assert.Equal(t, "sendEmail", NormalizeModelToken(" `sendEmail`.\n"))
	assert.Equal(t, "fetchEmails", NormalizeModelToken("\"fetchEmails\""))
}

func TestFlattenArguments(t *testing.T) {
	args, err := FlattenArguments([]byte(`{"to":"bob@x.com","count":3,"urgent":true,"skip":null,"tags":["a","b"]}`))
	require.NoError(t, err)

	assert.Equal(t, "bob@x.com", args["to"])
	assert.Equal(t, "3", args["count"])
	assert.Equal(t, "true", args["urgent"])
	assert.Equal(t, `["a","b"]`, args["tags"])
	_, present := args["skip"]
	assert.False(t, present)

	args, err = FlattenArguments(nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	_, err = FlattenArguments([]byte(`["not","an","object"]`))
	assert.Error(t, err)
}

func TestArgument(t *testing.T) {
	args := map[string]string{"recipient": "a@b.com", "to": "  "}
	assert.Equal(t, "a@b.com", Argument(args, "to", "recipient"))
	assert.Equal(t, "", Argument(args, "subject"))
}

func TestGenerateIDs(t *testing.T) {
	id := GenerateMessageID("example.com")
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@example.com>"))
	assert.NotEqual(t, GenerateThreadID(), GenerateThreadID())
}

func TestExtractDomainFromEmail(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomainFromEmail("Sam <sam@Example.com>"))
	assert.Equal(t, "", ExtractDomainFromEmail("not-an-email"))
}

func TestThreadIDInContext(t *testing.T) {
	ctx := SetThreadIDInContext(context.Background(), "thr_1")
	assert.Equal(t, "thr_1", GetThreadIDFromContext(ctx))
	assert.Equal(t, "", GetThreadIDFromContext(context.Background()))
}
