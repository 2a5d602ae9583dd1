package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/clubsphere/club-api/internal/models"
)

// Notifier receives the triggering events of the registration workflow.
// Delivery failures are logged by callers and never fail the request.
type Notifier interface {
	NotifyRegistrationConfirmed(reg models.Registration, category models.EventCategory) error
	NotifyPaymentReceived(reg models.Registration) error
	NotifyCertificateIssued(name, eventTitle, credentialID string) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyRegistrationConfirmed(reg models.Registration, category models.EventCategory) error {
	team := ""
	if reg.TeamName != "" {
		team = fmt.Sprintf("\n**Team:** %s (%d members)", reg.TeamName, len(reg.TeamMembers))
	}
	message := fmt.Sprintf("🎉 **Registration Confirmed**\n**Name:** %s\n**Category:** %s%s",
		reg.Name,
		category.Name,
		team,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyPaymentReceived(reg models.Registration) error {
	message := fmt.Sprintf("💳 **Payment Received**\n**Name:** %s\n**Amount:** %d %s\n**Transaction:** %s",
		reg.Name,
		reg.Amount,
		reg.Currency,
		reg.TransactionID,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyCertificateIssued(name, eventTitle, credentialID string) error {
	message := fmt.Sprintf("📜 **Certificate Issued**\n**Name:** %s\n**Event:** %s\n**Credential:** %s",
		name,
		eventTitle,
		credentialID,
	)
	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}
	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}
	return nil
}
