// Package notify announces hunts and character approvals on a Discord
// channel through a webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
)

// ErrInvalidWebhookURL is returned for URLs that are not Discord webhook URLs
var ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

// Notifier is told about game events worth announcing
type Notifier interface {
	HuntRecorded(ctx context.Context, hunt *models.Hunt, description *models.HuntingDescription) error
	CharacterVerified(ctx context.Context, character *models.Character) error
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) HuntRecorded(context.Context, *models.Hunt, *models.HuntingDescription) error {
	return nil
}

func (NopNotifier) CharacterVerified(context.Context, *models.Character) error {
	return nil
}

// WebhookExecutor is the part of a discordgo session used to post messages
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config configures a DiscordNotifier
type Config struct {
	WebhookURL string
	Username   string
	AvatarURL  string
}

// DiscordNotifier posts embeds to a Discord webhook
type DiscordNotifier struct {
	executor  WebhookExecutor
	webhookID string
	token     string
	username  string
	avatarURL string
	embeds    *EmbedBuilder
	logger    logging.Logger
}

// NewDiscordNotifier creates a notifier posting through a fresh discordgo
// session. Webhooks need no bot token.
func NewDiscordNotifier(cfg Config) (*DiscordNotifier, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return NewDiscordNotifierWith(session, cfg)
}

// NewDiscordNotifierWith creates a notifier posting through executor
func NewDiscordNotifierWith(executor WebhookExecutor, cfg Config) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		executor:  executor,
		webhookID: id,
		token:     token,
		username:  cfg.Username,
		avatarURL: cfg.AvatarURL,
		embeds:    NewEmbedBuilder(),
		logger:    logging.GetGlobalLoggerFactory().CreateLogger("notify"),
	}, nil
}

// New returns a DiscordNotifier when a webhook is configured and a
// NopNotifier otherwise
func New(cfg Config) (Notifier, error) {
	if cfg.WebhookURL == "" {
		return NopNotifier{}, nil
	}
	return NewDiscordNotifier(cfg)
}

func (n *DiscordNotifier) HuntRecorded(ctx context.Context, hunt *models.Hunt, description *models.HuntingDescription) error {
	return n.send(ctx, n.embeds.Hunt(hunt, description))
}

func (n *DiscordNotifier) CharacterVerified(ctx context.Context, character *models.Character) error {
	return n.send(ctx, n.embeds.CharacterVerified(character))
}

func (n *DiscordNotifier) send(ctx context.Context, embed *discordgo.MessageEmbed) error {
	params := &discordgo.WebhookParams{
		Username:  n.username,
		AvatarURL: n.avatarURL,
		Embeds:    []*discordgo.MessageEmbed{embed},
	}

	if _, err := n.executor.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		n.logger.Error("Failed to post webhook", err, map[string]interface{}{
			"title": embed.Title,
		})
		return fmt.Errorf("execute webhook: %w", err)
	}

	n.logger.Debug("Webhook posted", map[string]interface{}{
		"title": embed.Title,
	})
	return nil
}

// ParseWebhookURL extracts the id and token of a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidWebhookURL, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "webhooks" && i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidWebhookURL, raw)
}
