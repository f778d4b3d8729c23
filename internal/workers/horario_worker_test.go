package workers

import (
	"context"
	"io"
	"testing"
	"time"

	"tutorias_backend/internal/config"
	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitWithWriter("test", io.Discard)
}

func TestHorarioWorker_ExpirePast(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, tutor := testutil.CreateTutor(t, db, "tutor@test.com")

	past := testutil.CreateHorario(t, db, tutor.ID, "2025-03-09", "10:00:00", models.HorarioDisponible)
	pastTaken := testutil.CreateHorario(t, db, tutor.ID, "2025-03-09", "11:00:00", models.HorarioOcupado)
	today := testutil.CreateHorario(t, db, tutor.ID, "2025-03-10", "08:00:00", models.HorarioDisponible)
	future := testutil.CreateHorario(t, db, tutor.ID, "2025-04-01", "08:00:00", models.HorarioDisponible)

	w := NewHorarioWorker(db, repositories.NewHorarioRepository(), time.Hour)
	w.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	n, err := w.ExpirePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Equal(t, models.HorarioCancelado, testutil.HorarioEstado(t, db, past.ID))
	assert.Equal(t, models.HorarioOcupado, testutil.HorarioEstado(t, db, pastTaken.ID))
	assert.Equal(t, models.HorarioDisponible, testutil.HorarioEstado(t, db, today.ID))
	assert.Equal(t, models.HorarioDisponible, testutil.HorarioEstado(t, db, future.ID))

	// повторный запуск ничего не меняет
	n, err = w.ExpirePast(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHorarioWorker_StartStopsWithContext(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, tutor := testutil.CreateTutor(t, db, "tutor@test.com")
	past := testutil.CreateHorario(t, db, tutor.ID, "2000-01-01", "10:00:00", models.HorarioDisponible)

	ctx, cancel := context.WithCancel(context.Background())
	w := NewHorarioWorker(db, repositories.NewHorarioRepository(), 10*time.Millisecond)
	w.Start(ctx)

	assert.Eventually(t, func() bool {
		return testutil.HorarioEstado(t, db, past.ID) == models.HorarioCancelado
	}, 2*time.Second, 20*time.Millisecond)
	cancel()
}

func TestHorarioWorker_DisabledByDefaultLeavesPastSlots(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, tutor := testutil.CreateTutor(t, db, "tutor@test.com")
	past := testutil.CreateHorario(t, db, tutor.ID, "2024-01-10", "10:00:00", models.HorarioDisponible)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewHorarioWorker(db, repositories.NewHorarioRepository(), config.Default().SlotExpiryEvery())
	w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, models.HorarioDisponible, testutil.HorarioEstado(t, db, past.ID))

	horarios, err := repositories.NewHorarioRepository().ListDisponiblesByTutor(db, tutor.ID)
	require.NoError(t, err)
	assert.Len(t, horarios, 1)
}
