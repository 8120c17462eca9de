package syncer

import (
	"context"
	"time"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/notify"
)

// QueueWatcher — опросчик списка чатов дашборда, связанный с трекером
// входящих: новые waiting-чаты поднимают уведомление и бейдж.
type QueueWatcher struct {
	poller  *Poller[[]ChatSummary]
	tracker *notify.Tracker
}

// NewQueueWatcher собирает наблюдателя очереди. notifier может быть nil —
// останется только счётчик.
func NewQueueWatcher(client *Client, interval time.Duration, notifier notify.Notifier) *QueueWatcher {
	tracker := notify.NewTracker(notifier)
	poller := NewPoller(interval, func(ctx context.Context) ([]ChatSummary, error) {
		return client.Chats(ctx)
	}, func(chats []ChatSummary) {
		var waiting []notify.Incoming
		for _, ch := range chats {
			if ch.Status == model.ChatStatusWaiting {
				waiting = append(waiting, notify.Incoming{ChatID: ch.ID, ClientName: ch.ClientName})
			}
		}
		tracker.Observe(waiting)
	})
	return &QueueWatcher{poller: poller, tracker: tracker}
}

// Run блокируется до отмены ctx.
func (w *QueueWatcher) Run(ctx context.Context) { w.poller.Run(ctx) }

// Chats — последний снимок списка чатов.
func (w *QueueWatcher) Chats() ([]ChatSummary, bool) { return w.poller.Snapshot() }

// Open отмечает чат просмотренным (оператор открыл или принял его).
func (w *QueueWatcher) Open(chatID uint64) { w.tracker.Dismiss(chatID) }

// Badge — число непросмотренных входящих.
func (w *QueueWatcher) Badge() int { return w.tracker.Count() }
