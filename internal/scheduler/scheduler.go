// Package scheduler возвращает отложенные чаты в работу по расписанию.
// В старой версии системы напоминание откладывания нигде не срабатывало,
// чат «оживал» только следующим опросом — теперь переход происходит явно.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ChatResumer — часть чат-сервиса, нужная планировщику.
type ChatResumer interface {
	ResumeDue(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	cron  *cron.Cron
	chats ChatResumer
}

func New(chats ChatResumer) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		chats: chats,
	}
}

// Start регистрирует ежеминутную проверку отложенных чатов и запускает cron.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := s.chats.ResumeDue(ctx, time.Now())
		if err != nil {
			log.Printf("scheduler: resume postponed chats: %v", err)
			return
		}
		if n > 0 {
			log.Printf("scheduler: resumed %d postponed chat(s)", n)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop останавливает cron и дожидается завершения текущего запуска.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
