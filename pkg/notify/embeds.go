package notify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/vtmsu/pkg/database/models"
)

// Embed colours
const (
	ColorSuccess = 0x2ecc71
	ColorWarning = 0xffaa00
	ColorError   = 0xff0000
	ColorInfo    = 0x7289da
	ColorBlood   = 0x8a0303
)

// EmbedBuilder builds the Discord embeds sent by a Notifier
type EmbedBuilder struct {
	now func() time.Time
}

func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{now: time.Now}
}

// Info creates an info embed
func (b *EmbedBuilder) Info(title, description string) *discordgo.MessageEmbed {
	return b.embed(title, description, ColorInfo)
}

// Warning creates a warning embed
func (b *EmbedBuilder) Warning(title, description string) *discordgo.MessageEmbed {
	return b.embed(title, description, ColorWarning)
}

// Error creates an error embed
func (b *EmbedBuilder) Error(title, description string) *discordgo.MessageEmbed {
	return b.embed(title, description, ColorError)
}

// Hunt creates the embed announcing a recorded hunt
func (b *EmbedBuilder) Hunt(hunt *models.Hunt, description *models.HuntingDescription) *discordgo.MessageEmbed {
	title := "🩸 Hunt: " + StatusLabel(hunt.Status)
	if hunt.Character != nil && hunt.Character.Name != "" {
		title = fmt.Sprintf("🩸 %s hunted: %s", hunt.Character.Name, StatusLabel(hunt.Status))
	}

	embed := b.embed(title, "", StatusColor(hunt.Status))
	if description != nil {
		embed.Description = truncate(description.Content, 2048)
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Character",
		Value:  fmt.Sprintf("#%d", hunt.CharacterID),
		Inline: true,
	})
	if hunt.InstanceID != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Instance",
			Value:  fmt.Sprintf("#%d", *hunt.InstanceID),
			Inline: true,
		})
	}
	if description != nil && description.Remains != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Remains",
			Value:  fmt.Sprintf("%d", *description.Remains),
			Inline: true,
		})
	}
	return embed
}

// CharacterVerified creates the embed announcing an approved character
func (b *EmbedBuilder) CharacterVerified(character *models.Character) *discordgo.MessageEmbed {
	embed := b.embed("✅ Character approved", character.Name, ColorSuccess)

	if character.Clan != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Clan", Value: character.Clan.Name, Inline: true})
	}
	if character.Faction != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Faction", Value: character.Faction.Name, Inline: true})
	}
	if character.PlayerName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Player", Value: character.PlayerName, Inline: true})
	}
	if character.Image != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: character.Image}
	}
	return embed
}

func (b *EmbedBuilder) embed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   b.now().Format(time.RFC3339),
	}
}

// StatusColor maps a hunt status to its embed colour
func StatusColor(status models.HuntStatus) int {
	switch status {
	case models.HuntSuccess:
		return ColorBlood
	case models.HuntExpFailure, models.HuntReqFailure:
		return ColorWarning
	case models.HuntMasqFailure:
		return ColorError
	default:
		return ColorInfo
	}
}

// StatusLabel returns a human readable hunt status
func StatusLabel(status models.HuntStatus) string {
	switch status {
	case models.HuntSuccess:
		return "success"
	case models.HuntExpFailure:
		return "failed, not enough experience"
	case models.HuntReqFailure:
		return "failed, requirements not met"
	case models.HuntMasqFailure:
		return "Masquerade breach"
	default:
		return string(status)
	}
}

// truncate cuts s to the embed length limit
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
