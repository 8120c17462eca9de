// Package notify отслеживает новые входящие чаты между опросами.
// Дедупликация — только по членству id в множестве; счётчик идёт на бейдж,
// Notifier — на десктопное уведомление или его замену.
package notify

import "sync"

// Notifier — внешняя возможность показать уведомление о новом чате.
type Notifier interface {
	NotifyNewChat(chatID uint64, clientName string)
}

// NotifierFunc адаптирует функцию до Notifier.
type NotifierFunc func(chatID uint64, clientName string)

func (f NotifierFunc) NotifyNewChat(chatID uint64, clientName string) { f(chatID, clientName) }

// Incoming — входящий чат глазами трекера.
type Incoming struct {
	ChatID     uint64
	ClientName string
}

// Tracker хранит множество непросмотренных входящих чатов.
type Tracker struct {
	mu       sync.Mutex
	pending  map[uint64]struct{}
	notifier Notifier
}

// NewTracker создаёт трекер. notifier может быть nil.
func NewTracker(notifier Notifier) *Tracker {
	return &Tracker{
		pending:  make(map[uint64]struct{}),
		notifier: notifier,
	}
}

// Observe принимает свежий снимок очереди waiting и уведомляет о чатах,
// которых трекер ещё не видел. Возвращает число новых.
func (t *Tracker) Observe(waiting []Incoming) int {
	t.mu.Lock()
	var fresh []Incoming
	seen := make(map[uint64]struct{}, len(waiting))
	for _, in := range waiting {
		seen[in.ChatID] = struct{}{}
		if _, ok := t.pending[in.ChatID]; !ok {
			t.pending[in.ChatID] = struct{}{}
			fresh = append(fresh, in)
		}
	}
	// Чаты, ушедшие из очереди (приняты другим оператором), забываются.
	for id := range t.pending {
		if _, ok := seen[id]; !ok {
			delete(t.pending, id)
		}
	}
	t.mu.Unlock()

	if t.notifier != nil {
		for _, in := range fresh {
			t.notifier.NotifyNewChat(in.ChatID, in.ClientName)
		}
	}
	return len(fresh)
}

// Dismiss убирает чат из множества: оператор открыл или принял его.
func (t *Tracker) Dismiss(chatID uint64) {
	t.mu.Lock()
	delete(t.pending, chatID)
	t.mu.Unlock()
}

// Count — текущее значение бейджа.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
