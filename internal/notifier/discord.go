package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/yukikurage/taskquest-api/internal/models"
)

// ChannelSender is the part of *discordgo.Session the notifier needs.
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier announces newly awarded achievements in a Discord channel.
type DiscordNotifier struct {
	session   ChannelSender
	channelID string
}

func NewDiscordNotifier(session ChannelSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewDiscordNotifierFromToken opens a bot session for token.
func NewDiscordNotifierFromToken(token, channelID string) (*DiscordNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewDiscordNotifier(session, channelID), nil
}

func (n *DiscordNotifier) AchievementsAwarded(_ context.Context, user *models.User, achievements []models.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, FormatAchievements(user, achievements))
	if err != nil {
		return fmt.Errorf("failed to send achievement announcement: %w", err)
	}

	return nil
}

// FormatAchievements renders the announcement posted for one completion.
func FormatAchievements(user *models.User, achievements []models.Achievement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏆 **Achievement Unlocked**\n**User:** %s (level %d)\n", user.Username, user.Level)
	for _, a := range achievements {
		fmt.Fprintf(&b, "• **%s**: %s\n", a.Name, a.Description)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Noop drops every announcement. It is used when Discord is not configured.
type Noop struct{}

func (Noop) AchievementsAwarded(context.Context, *models.User, []models.Achievement) error {
	return nil
}
