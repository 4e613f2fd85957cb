package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

func TestHub_DeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(4)
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	ev := domain.NewChangeEvent(domain.TableCardPayments, domain.ActionInsert, "p1", "2024-05-10", nil)
	hub.Publish(context.Background(), ev)

	assert.Equal(t, ev.EventID, (<-a).EventID)
	assert.Equal(t, ev.EventID, (<-b).EventID)
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		hub.Publish(context.Background(), domain.NewChangeEvent(domain.TableCashMovements, domain.ActionInsert, "m", "", nil))
	}
	assert.Len(t, ch, 1)
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	hub := NewHub(0)
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers())
	_, open := <-ch
	assert.False(t, open)

	hub.Publish(context.Background(), domain.NewChangeEvent(domain.TableInvoices, domain.ActionDelete, "i", "", nil))
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub(8)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancel := hub.Subscribe()
			cancel()
		}()
		go func() {
			defer wg.Done()
			hub.Publish(context.Background(), domain.NewChangeEvent(domain.TableDailyRecords, domain.ActionUpdate, "d", "", nil))
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Subscribers())
}

type recordingPublisher struct {
	events []domain.ChangeEvent
}

func (r *recordingPublisher) Publish(_ context.Context, e domain.ChangeEvent) {
	r.events = append(r.events, e)
}

func TestMulti(t *testing.T) {
	first, second := &recordingPublisher{}, &recordingPublisher{}
	Multi{first, nil, second}.Publish(context.Background(), domain.ChangeEvent{Key: "k"})
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func closedDay(at time.Time) domain.DailyCashRecord {
	actual, diff := decimal.NewFromInt(225), decimal.NewFromInt(-5)
	by := "mario"
	return domain.DailyCashRecord{
		Date:             "2024-05-10",
		CashSales:        decimal.NewFromInt(50),
		CardSales:        decimal.NewFromInt(35),
		Expenses:         decimal.NewFromInt(20),
		TheoreticalFloat: decimal.NewFromInt(230),
		ActualFloat:      &actual,
		Discrepancy:      &diff,
		Closed:           true,
		ClosedAt:         &at,
		ClosedBy:         &by,
		UpdatedAt:        at,
	}
}

func TestTelegramNotifier_OnlyClosures(t *testing.T) {
	sender := new(mockSender)
	n := &TelegramNotifier{bot: sender, chatID: 42}
	at := time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)
	rec := closedDay(at)

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42
	})).Return(nil).Once()

	ctx := context.Background()
	n.Publish(ctx, domain.NewChangeEvent(domain.TableDailyRecords, domain.ActionUpdate, rec.Date, rec.Date, rec))

	refreshed := rec
	refreshed.UpdatedAt = at.Add(time.Hour)
	n.Publish(ctx, domain.NewChangeEvent(domain.TableDailyRecords, domain.ActionUpdate, rec.Date, rec.Date, refreshed))
	n.Publish(ctx, domain.NewChangeEvent(domain.TableCardPayments, domain.ActionInsert, "p1", rec.Date, nil))

	open := rec
	open.Closed = false
	n.Publish(ctx, domain.NewChangeEvent(domain.TableDailyRecords, domain.ActionUpdate, rec.Date, rec.Date, &open))
	n.Close()

	sender.AssertExpectations(t)
}

func TestTelegramNotifier_PublishDoesNotWaitForSend(t *testing.T) {
	sender := new(mockSender)
	n := &TelegramNotifier{bot: sender, chatID: 42}
	rec := closedDay(time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC))

	release := make(chan struct{})
	sender.On("Send", mock.Anything).Return(nil).Run(func(mock.Arguments) { <-release }).Once()

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		n.Publish(ctx, domain.NewChangeEvent(domain.TableDailyRecords, domain.ActionUpdate, rec.Date, rec.Date, rec))
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on the Telegram API")
	}
	cancel()
	close(release)
	n.Close()

	sender.AssertExpectations(t)
}

func TestClosureMessage(t *testing.T) {
	msg := ClosureMessage(closedDay(time.Now()))
	assert.Contains(t, msg, "Cassa chiusa - 10/05/2024")
	assert.Contains(t, msg, "Fondo teorico: € 230,00")
	assert.Contains(t, msg, "Differenza: € -5,00")
}

func TestEncodeEvent(t *testing.T) {
	ev := domain.NewChangeEvent(domain.TableCardPayments, domain.ActionInsert, "p1", "2024-05-10", map[string]string{"a": "b"})
	msg, err := encodeEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "pagamenti_pos.INSERT", msg.Type)
	assert.Contains(t, string(msg.Body), `"table":"pagamenti_pos"`)
}
