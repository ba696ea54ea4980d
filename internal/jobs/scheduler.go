// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасная чистка просроченных
// запросов монет и снятие истёкших мьютов.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/features/accounts"
	"nookbot/internal/features/requests"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron             *cron.Cron
	requestService   *requests.Service
	accountService   *accounts.Service
	requestRetention time.Duration
}

// NewScheduler создаёт планировщик задач. Дневные лимиты считаются по
// UTC-дате, поэтому и расписание живёт в UTC.
func NewScheduler(requestService *requests.Service, accountService *accounts.Service, requestRetention time.Duration) *Scheduler {
	c := cron.New(cron.WithLocation(time.UTC))

	return &Scheduler{
		cron:             c,
		requestService:   requestService,
		accountService:   accountService,
		requestRetention: requestRetention,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ежечасная чистка просроченных запросов монет
	s.cron.AddFunc("0 * * * *", func() {
		removed, err := s.requestService.Sweep(ctx, s.requestRetention, time.Now())
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка чистки запросов")
			return
		}
		if removed > 0 {
			log.WithField("removed", removed).Info("[CRON] Просроченные запросы удалены")
		}
	})

	// Снятие истёкших мьютов каждые 10 минут. Telegram снимает ограничение
	// сам, здесь чистится только наша отметка в БД.
	s.cron.AddFunc("*/10 * * * *", func() {
		cleared, err := s.accountService.ClearExpiredMutes(ctx, time.Now())
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка снятия мьютов")
			return
		}
		if cleared > 0 {
			log.WithField("cleared", cleared).Debug("[CRON] Истёкшие мьюты сняты")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (UTC)")
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
