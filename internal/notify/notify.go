// Package notify tells reviewers and employees about request activity.
package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type EventKind string

const (
	ManualRequestSubmitted   EventKind = "manual_request.submitted"
	ManualRequestReviewed    EventKind = "manual_request.reviewed"
	PasswordRequestSubmitted EventKind = "password_request.submitted"
	PasswordRequestReviewed  EventKind = "password_request.reviewed"
	EmployeeAdded            EventKind = "employee.added"
)

type Event struct {
	Kind    EventKind
	Subject string
	Detail  string
}

func (e Event) String() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Subject)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Subject, e.Detail)
}

type Notifier interface {
	Notify(ctx context.Context, e Event)
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, e Event) {
	log.Printf("Notification %s", e)
}

// Multi fans an event out to every notifier.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		n.Notify(ctx, e)
	}
}

// Sender is the part of the bot API used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot     Sender
	chatIDs []int64
}

func NewTelegramNotifier(token string, chatIDs []int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to start telegram bot: %w", err)
	}
	log.Printf("Telegram notifier authorized as @%s", bot.Self.UserName)
	return NewTelegramNotifierWithSender(bot, chatIDs), nil
}

func NewTelegramNotifierWithSender(bot Sender, chatIDs []int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatIDs: chatIDs}
}

func (t *TelegramNotifier) Notify(ctx context.Context, e Event) {
	for _, chatID := range t.chatIDs {
		if ctx.Err() != nil {
			return
		}
		msg := tgbotapi.NewMessage(chatID, e.String())
		if _, err := t.bot.Send(msg); err != nil {
			log.Printf("Failed to send telegram notification to %d: %v", chatID, err)
		}
	}
}
