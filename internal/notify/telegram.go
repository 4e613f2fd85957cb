package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gestionale-jos/jos_backend/internal/report"
	"github.com/gestionale-jos/jos_backend/internal/utils"
)

// messageSender is the part of tgbotapi.BotAPI the notifier uses.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a summary to a chat whenever a business day is closed.
// Every other event is ignored. Messages are sent in the background so the
// closing request never waits on the Telegram API.
type TelegramNotifier struct {
	bot      messageSender
	chatID   int64
	inFlight sync.WaitGroup
}

// NewTelegramNotifier authenticates the bot token against the Telegram API.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// closedRecord returns the record carried by event when the event is the closure itself.
// Later refreshes of a closed day keep the original ClosedAt and are skipped.
func closedRecord(event domain.ChangeEvent) (domain.DailyCashRecord, bool) {
	if event.Table != domain.TableDailyRecords || event.Action == domain.ActionDelete {
		return domain.DailyCashRecord{}, false
	}
	var rec domain.DailyCashRecord
	switch p := event.Payload.(type) {
	case domain.DailyCashRecord:
		rec = p
	case *domain.DailyCashRecord:
		if p == nil {
			return rec, false
		}
		rec = *p
	default:
		return rec, false
	}
	if !rec.Closed || rec.ClosedAt == nil || !rec.ClosedAt.Equal(rec.UpdatedAt) {
		return rec, false
	}
	return rec, true
}

// ClosureMessage is the chat text for a closed day.
func ClosureMessage(rec domain.DailyCashRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cassa chiusa - %s\n", report.ItalianDate(rec.Date))
	if rec.ClosedBy != nil {
		fmt.Fprintf(&b, "Operatore: %s\n", *rec.ClosedBy)
	}
	fmt.Fprintf(&b, "Contanti: %s\n", utils.FormatEuro(rec.CashSales))
	fmt.Fprintf(&b, "Carta: %s\n", utils.FormatEuro(rec.CardSales))
	fmt.Fprintf(&b, "Uscite: %s\n", utils.FormatEuro(rec.Expenses))
	fmt.Fprintf(&b, "Fondo teorico: %s\n", utils.FormatEuro(rec.TheoreticalFloat))
	if rec.ActualFloat != nil {
		fmt.Fprintf(&b, "Fondo reale: %s\n", utils.FormatEuro(*rec.ActualFloat))
	}
	if rec.Discrepancy != nil {
		sign := ""
		if rec.Discrepancy.IsPositive() {
			sign = "+"
		}
		fmt.Fprintf(&b, "Differenza: %s%s\n", sign, utils.FormatEuro(*rec.Discrepancy))
	}
	if rec.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", rec.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (n *TelegramNotifier) Publish(ctx context.Context, event domain.ChangeEvent) {
	rec, ok := closedRecord(event)
	if !ok {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, ClosureMessage(rec))
	// The request context ends with the response; keep only its values (logger).
	sendCtx := context.WithoutCancel(ctx)
	n.inFlight.Add(1)
	go func() {
		defer n.inFlight.Done()
		if _, err := n.bot.Send(msg); err != nil {
			middleware.GetLoggerFromCtx(sendCtx).Error("Failed to send closure notification",
				slog.String("error", err.Error()),
				slog.String("date", rec.Date))
		}
	}()
}

// Close waits for notifications still being sent.
func (n *TelegramNotifier) Close() {
	n.inFlight.Wait()
}
