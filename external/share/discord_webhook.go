package share

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/foxseedlab/debrief/internal/share"
)

const (
	embedColor            = 0x5865F2
	maxDescriptionRunes   = 4096
	maxFieldValueRunes    = 1024
	maxActionItemsInEmbed = 10
)

// DiscordWebhookNotifier posts each delivered debrief to a Discord channel webhook.
type DiscordWebhookNotifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

func NewDiscordWebhookNotifier(webhookURL string) (share.Notifier, error) {
	if webhookURL == "" {
		return share.NewNoopNotifier(), nil
	}
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	s, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &DiscordWebhookNotifier{session: s, webhookID: id, token: token}, nil
}

func (n *DiscordWebhookNotifier) NotifyDebrief(ctx context.Context, d share.Debrief) error {
	msg, err := n.session.WebhookExecute(n.webhookID, n.token, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{buildEmbed(d)},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	messageID := ""
	if msg != nil {
		messageID = msg.ID
	}
	slog.Info("debrief shared to discord", "workflow_id", d.WorkflowID, "message_id", messageID)
	return nil
}

func buildEmbed(d share.Debrief) *discordgo.MessageEmbed {
	title := "Meeting debrief"
	if d.SourceName != "" {
		title = "Meeting debrief: " + d.SourceName
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: truncate(d.Summary, maxDescriptionRunes),
		Color:       embedColor,
	}
	if len(d.ActionItems) > 0 {
		lines := make([]string, 0, maxActionItemsInEmbed+1)
		for i, item := range d.ActionItems {
			if i == maxActionItemsInEmbed {
				lines = append(lines, fmt.Sprintf("…and %d more", len(d.ActionItems)-i))
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Action Items",
			Value: truncate(strings.Join(lines, "\n"), maxFieldValueRunes),
		})
	}
	if len(d.Recipients) > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Emailed to %d recipient(s)", len(d.Recipients)),
		}
	}
	return embed
}

// parseWebhookURL extracts the id and token from
// https://discord.com/api/webhooks/{id}/{token}.
func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse discord webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("discord webhook url must look like /api/webhooks/{id}/{token}, got %q", u.Path)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
