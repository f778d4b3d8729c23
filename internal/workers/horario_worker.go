package workers

import (
	"context"
	"time"

	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/repositories"

	"gorm.io/gorm"
)

type HorarioWorker struct {
	db          *gorm.DB
	horarioRepo repositories.HorarioRepository
	every       time.Duration
	now         func() time.Time
}

func NewHorarioWorker(db *gorm.DB, horarioRepo repositories.HorarioRepository, every time.Duration) *HorarioWorker {
	return &HorarioWorker{
		db:          db,
		horarioRepo: horarioRepo,
		every:       every,
		now:         time.Now,
	}
}

// Start запускает фоновое закрытие прошедших свободных слотов
func (w *HorarioWorker) Start(ctx context.Context) {
	if w.every <= 0 {
		logger.Info("Horario worker disabled")
		return
	}
	go w.run(ctx)
}

func (w *HorarioWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Horario worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ExpirePast(ctx); err != nil {
				logger.Error("Error expiring past horarios", "error", err)
			}
		}
	}
}

// ExpirePast переводит disponible слоты со вчерашней и более ранней датой в cancelado.
// Занятые слоты не трогаем: ими управляет жизненный цикл тьютории.
func (w *HorarioWorker) ExpirePast(ctx context.Context) (int64, error) {
	today := w.now().Format("2006-01-02")

	n, err := w.horarioRepo.ExpireBefore(w.db.WithContext(ctx), today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Expired past horarios", "count", n, "before", today)
	}
	return n, nil
}
