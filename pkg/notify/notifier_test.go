package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookCall struct {
	id, token string
	params    *discordgo.WebhookParams
}

type fakeExecutor struct {
	calls []webhookCall
	err   error
}

func (f *fakeExecutor) WebhookExecute(webhookID, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.calls = append(f.calls, webhookCall{id: webhookID, token: token, params: data})
	return nil, f.err
}

const webhookURL = "https://discord.com/api/webhooks/1234567890/s3cr3t-token"

func TestParseWebhookURL(t *testing.T) {
	id, token, err := ParseWebhookURL(webhookURL)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", id)
	assert.Equal(t, "s3cr3t-token", token)

	for _, raw := range []string{
		"",
		"not a url",
		"https://discord.com/api/webhooks/1234567890",
		"https://discord.com/api/channels/1/2",
	} {
		_, _, err := ParseWebhookURL(raw)
		assert.ErrorIs(t, err, ErrInvalidWebhookURL, raw)
	}
}

func TestNewWithoutWebhookIsNop(t *testing.T) {
	n, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, NopNotifier{}, n)
	assert.NoError(t, n.HuntRecorded(context.Background(), &models.Hunt{}, nil))
}

func TestDiscordNotifierPostsHunt(t *testing.T) {
	exec := &fakeExecutor{}
	n, err := NewDiscordNotifierWith(exec, Config{WebhookURL: webhookURL, Username: "Storyteller"})
	require.NoError(t, err)

	instanceID := 7
	remains := 1
	hunt := &models.Hunt{
		CharacterID: 3,
		InstanceID:  &instanceID,
		Status:      models.HuntSuccess,
		Character:   &models.Character{Name: "Lily"},
	}
	desc := &models.HuntingDescription{Remains: &remains, Content: "The dancer sways, pale."}

	require.NoError(t, n.HuntRecorded(context.Background(), hunt, desc))
	require.Len(t, exec.calls, 1)

	call := exec.calls[0]
	assert.Equal(t, "1234567890", call.id)
	assert.Equal(t, "s3cr3t-token", call.token)
	assert.Equal(t, "Storyteller", call.params.Username)
	require.Len(t, call.params.Embeds, 1)

	embed := call.params.Embeds[0]
	assert.Contains(t, embed.Title, "Lily")
	assert.Equal(t, "The dancer sways, pale.", embed.Description)
	assert.Equal(t, ColorBlood, embed.Color)
	assert.Len(t, embed.Fields, 3)
}

func TestDiscordNotifierWrapsErrors(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("429 too many requests")}
	n, err := NewDiscordNotifierWith(exec, Config{WebhookURL: webhookURL})
	require.NoError(t, err)

	err = n.CharacterVerified(context.Background(), &models.Character{Name: "Nines"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute webhook")
}

func TestCharacterVerifiedEmbed(t *testing.T) {
	b := &EmbedBuilder{now: func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) }}

	embed := b.CharacterVerified(&models.Character{
		Name:       "Jeanette",
		PlayerName: "Alex",
		Image:      "https://example.com/j.png",
		Clan:       &models.Clan{Name: "Malkavian"},
	})
	assert.Equal(t, "Jeanette", embed.Description)
	assert.Equal(t, "2026-10-17T00:00:00Z", embed.Timestamp)
	assert.Len(t, embed.Fields, 2)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "https://example.com/j.png", embed.Thumbnail.URL)
}

func TestStatusColorsAndLabels(t *testing.T) {
	for _, status := range models.HuntStatuses() {
		assert.NotEqual(t, ColorInfo, StatusColor(status), status)
		assert.NotEmpty(t, StatusLabel(status))
	}
	assert.Equal(t, ColorInfo, StatusColor("unknown"))
	assert.Equal(t, "unknown", StatusLabel("unknown"))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("я", 3000)
	got := truncate(long, 2048)
	assert.Len(t, []rune(got), 2048)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "short", truncate("short", 2048))
}
