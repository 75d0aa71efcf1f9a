// Package notify pushes reservation activity to the shuttle managers over
// Telegram. It listens on the event bus; nothing here is on the booking path.
package notify

import (
	"encoding/json"
	"fmt"

	"grislo/internal/config"
	"grislo/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the slice of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	sender  Sender
	chatIDs []int64
	logger  *zerolog.Logger
}

// NewTelegramNotifier connects to the Bot API. Returns an error when the
// token is rejected; callers treat the notifier as optional.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier connected")
	return &TelegramNotifier{sender: bot, chatIDs: cfg.ChatIDs, logger: logger}, nil
}

// NewWithSender wires an arbitrary sender, for tests.
func NewWithSender(sender Sender, chatIDs []int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatIDs: chatIDs, logger: logger}
}

// SubscribeTo attaches the notifier to reservation lifecycle events.
func (n *TelegramNotifier) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.handleReservation)
	bus.Subscribe(events.EventReservationCancelled, n.handleReservation)
}

func (n *TelegramNotifier) handleReservation(event *events.Event) error {
	var payload events.ReservationEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Warn().Err(err).Str("event", event.Type).Msg("bad event payload")
		return err
	}

	text := formatReservationMessage(event.Type, payload)
	for _, chatID := range n.chatIDs {
		if _, err := n.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send notification")
		}
	}
	return nil
}

func formatReservationMessage(eventType string, p events.ReservationEventPayload) string {
	switch eventType {
	case events.EventReservationCreated:
		return fmt.Sprintf("New reservation %s\n%s %s, pickup: %s, guest %s",
			p.ReservationID, p.Date, p.Time, p.Location, p.DisplayName)
	case events.EventReservationCancelled:
		return fmt.Sprintf("Reservation %s cancelled by %s\n%s %s",
			p.ReservationID, p.ChangedBy, p.Date, p.Time)
	default:
		return fmt.Sprintf("Reservation %s: %s", p.ReservationID, p.Status)
	}
}
