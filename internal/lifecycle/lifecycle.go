// Package lifecycle содержит машину состояний чата: переходы статусов,
// лимит активных чатов на оператора и SLA-дедлайны с разовым продлением.
// Все функции чистые, текущее время передаётся параметром.
package lifecycle

import (
	"time"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/errs"
	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
)

const (
	// MaxActivePerOperator — сколько активных чатов оператор может вести одновременно.
	MaxActivePerOperator = 2

	// ExtensionGrace — разовое продление дедлайна после его истечения.
	ExtensionGrace = 15 * time.Minute

	// DefaultResponseSLA применяется, если в конфигурации не задан свой SLA.
	DefaultResponseSLA = 30 * time.Minute
)

// Transitions — допустимые переходы статусов. closed и escalated терминальны.
var Transitions = map[model.ChatStatus][]model.ChatStatus{
	model.ChatStatusWaiting:   {model.ChatStatusActive},
	model.ChatStatusActive:    {model.ChatStatusClosed, model.ChatStatusPostponed, model.ChatStatusEscalated},
	model.ChatStatusPostponed: {model.ChatStatusActive},
	model.ChatStatusEscalated: {},
	model.ChatStatusClosed:    {},
}

// CanTransition — true, если переход from → to допустим.
func CanTransition(from, to model.ChatStatus) bool {
	for _, s := range Transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Accept назначает чат оператору: waiting → active. activeCount — сколько
// активных чатов оператор уже ведёт; лимит проверяется здесь, на сервере.
func Accept(c *model.Chat, operator string, activeCount int, sla time.Duration, now time.Time) error {
	if !CanTransition(c.Status, model.ChatStatusActive) || c.Status != model.ChatStatusWaiting {
		return errs.ErrInvalidTransition
	}
	if activeCount >= MaxActivePerOperator {
		return errs.ErrOperatorBusy
	}
	if sla <= 0 {
		sla = DefaultResponseSLA
	}
	deadline := now.Add(sla)
	c.Status = model.ChatStatusActive
	c.AssignedOperator = operator
	c.AssignedAt = &now
	c.Deadline = &deadline
	return nil
}

// Close завершает чат: active → closed.
func Close(c *model.Chat, reason model.CloseReason, now time.Time) error {
	if !CanTransition(c.Status, model.ChatStatusClosed) {
		return errs.ErrInvalidTransition
	}
	if !reason.Valid() {
		return errs.ErrInvalidCloseReason
	}
	c.Status = model.ChatStatusClosed
	c.CloseReason = reason
	c.ClosedAt = &now
	return nil
}

// Postpone откладывает чат до resumeAt: active → postponed.
func Postpone(c *model.Chat, resumeAt time.Time, now time.Time) error {
	if !CanTransition(c.Status, model.ChatStatusPostponed) {
		return errs.ErrInvalidTransition
	}
	if resumeAt.Before(now) {
		resumeAt = now
	}
	c.Status = model.ChatStatusPostponed
	c.ResumeAt = &resumeAt
	return nil
}

// Resume возвращает отложенный чат в работу: postponed → active.
// Оператор и дедлайн сохраняются как были.
func Resume(c *model.Chat) error {
	if c.Status != model.ChatStatusPostponed {
		return errs.ErrInvalidTransition
	}
	c.Status = model.ChatStatusActive
	c.ResumeAt = nil
	return nil
}

// Activate переводит чат в active. waiting-чат принимается оператором
// (лимит, назначение, дедлайн), отложенный возвращается в работу досрочно —
// оператор не ждёт срабатывания напоминания.
func Activate(c *model.Chat, operator string, activeCount int, sla time.Duration, now time.Time) error {
	if c.Status == model.ChatStatusPostponed {
		return Resume(c)
	}
	return Accept(c, operator, activeCount, sla, now)
}

// Escalate передаёт чат на эскалацию: active → escalated. Дальнейших
// переходов нет — очередь разбора эскалаций в системе не смоделирована.
func Escalate(c *model.Chat) error {
	if !CanTransition(c.Status, model.ChatStatusEscalated) {
		return errs.ErrInvalidTransition
	}
	c.Status = model.ChatStatusEscalated
	return nil
}

// EffectiveDeadline — дедлайн с учётом использованного продления.
func EffectiveDeadline(c *model.Chat) *time.Time {
	if c.ExtensionUsed && c.ExtensionDeadline != nil {
		return c.ExtensionDeadline
	}
	return c.Deadline
}

// Remaining — остаток времени до дедлайна на момент now.
type Remaining struct {
	Left     time.Duration `json:"left"`
	Expired  bool          `json:"expired"`
	Extended bool          `json:"extended"`
}

// TimeRemaining вычисляет остаток SLA. Для чата без дедлайна остаток нулевой
// и не считается просроченным.
func TimeRemaining(c *model.Chat, now time.Time) Remaining {
	d := EffectiveDeadline(c)
	if d == nil {
		return Remaining{}
	}
	left := d.Sub(now)
	return Remaining{
		Left:     left,
		Expired:  left <= 0,
		Extended: c.ExtensionUsed,
	}
}

// Extend даёт разовое продление дедлайна на ExtensionGrace. Доступно только
// после истечения дедлайна; статус чата не меняется. Новый дедлайн считается
// от max(deadline, now), поэтому продление никогда не уменьшает срок.
func Extend(c *model.Chat, now time.Time) error {
	if c.Status != model.ChatStatusActive {
		return errs.ErrInvalidTransition
	}
	if c.ExtensionUsed {
		return errs.ErrExtensionUsed
	}
	if c.Deadline == nil || c.Deadline.After(now) {
		return errs.ErrNotExpired
	}
	base := now
	if c.Deadline.After(base) {
		base = *c.Deadline
	}
	extended := base.Add(ExtensionGrace)
	c.ExtensionUsed = true
	c.ExtensionDeadline = &extended
	return nil
}
