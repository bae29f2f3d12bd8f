package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	fail bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.fail {
		return tgbotapi.Message{}, errors.New("network down")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

type recorder struct{ events []Event }

func (r *recorder) Notify(_ context.Context, e Event) { r.events = append(r.events, e) }

func TestTelegramNotifierSendsToEveryChat(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifierWithSender(sender, []int64{10, 20})
	n.Notify(context.Background(), Event{Kind: PasswordRequestSubmitted, Subject: "John Smith", Detail: "Forgot current password"})

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sender.sent))
	}
	if sender.sent[1].ChatID != 20 {
		t.Fatalf("unexpected chat id %d", sender.sent[1].ChatID)
	}
	want := "[password_request.submitted] John Smith: Forgot current password"
	if sender.sent[0].Text != want {
		t.Fatalf("got %q, want %q", sender.sent[0].Text, want)
	}
}

func TestTelegramNotifierSurvivesSendErrors(t *testing.T) {
	n := NewTelegramNotifierWithSender(&fakeSender{fail: true}, []int64{1})
	n.Notify(context.Background(), Event{Kind: EmployeeAdded, Subject: "Nina"})
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b, LogNotifier{}}.Notify(context.Background(), Event{Kind: ManualRequestReviewed, Subject: "Request 2"})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected each notifier to receive the event")
	}
}
