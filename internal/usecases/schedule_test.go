package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"project_asesoria/internal/entities"
)

type fakeScheduleSource struct {
	slots []entities.ClassSlot
	err   error
}

func (f *fakeScheduleSource) Slots(ctx context.Context) ([]entities.ClassSlot, error) {
	return f.slots, f.err
}

func testSlots() []entities.ClassSlot {
	return []entities.ClassSlot{
		{Group: "A", DayKey: "lunes 4 de agosto", Slot: "6:00 a 8:00", Subject: "Derecho Policial", Position: 0},
		{Group: "A", DayKey: "lunes 4 de agosto", Slot: "8:00 a 10:00", Subject: "Ética", Position: 1},
		{Group: "A", DayKey: "martes 5 de agosto", Slot: "6:00 a 8:00", Subject: "Procedimientos", Position: 2},
		{Group: "B", DayKey: "lunes 4 de agosto", Slot: "18:00 a 20:00", Subject: "Derecho Policial", Position: 0},
	}
}

func testBook(src ScheduleSource, at time.Time) *ScheduleBook {
	b := NewScheduleBook(src, time.UTC)
	b.now = func() time.Time { return at }
	return b
}

func TestBuildMessageSingleGroup(t *testing.T) {
	b := testBook(&fakeScheduleSource{slots: testSlots()}, time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC))

	msg, err := b.BuildMessage(context.Background(), "horario del grupo b", "B")
	require.NoError(t, err)
	require.Contains(t, msg, "🗓️ *Horario de clases*")
	require.Contains(t, msg, "*Grupo B*")
	require.NotContains(t, msg, "*Grupo A*")
	require.Contains(t, msg, "   - 18:00 a 20:00: Derecho Policial")
}

func TestBuildMessageTodayFilter(t *testing.T) {
	// 2025-08-04 is a Monday.
	b := testBook(&fakeScheduleSource{slots: testSlots()}, time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC))

	msg, err := b.BuildMessage(context.Background(), "hay clase hoy", "A")
	require.NoError(t, err)
	require.Contains(t, msg, "Lunes 4 de agosto")
	require.NotContains(t, msg, "martes 5 de agosto")
}

func TestBuildMessageTomorrowFilter(t *testing.T) {
	b := testBook(&fakeScheduleSource{slots: testSlots()}, time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC))

	msg, err := b.BuildMessage(context.Background(), "y mañana que hay", "A")
	require.NoError(t, err)
	require.Contains(t, msg, "Martes 5 de agosto")
	require.NotContains(t, msg, "Lunes 4 de agosto")
}

func TestBuildMessageNoClassesThatDay(t *testing.T) {
	// Wednesday: no slots registered.
	b := testBook(&fakeScheduleSource{slots: testSlots()}, time.Date(2025, 8, 6, 9, 0, 0, 0, time.UTC))

	msg, err := b.BuildMessage(context.Background(), "clases hoy", "A")
	require.NoError(t, err)
	require.Equal(t, "No hay clases registradas para ese día.", msg)
}

func TestBuildMessageUnknownGroup(t *testing.T) {
	b := testBook(&fakeScheduleSource{slots: testSlots()}, time.Now())

	msg, err := b.BuildMessage(context.Background(), "horario", "C")
	require.NoError(t, err)
	require.Contains(t, msg, "No tengo horario para el *Grupo C*")
}

func TestBuildMessageEmptySchedule(t *testing.T) {
	b := testBook(&fakeScheduleSource{}, time.Now())

	msg, err := b.BuildMessage(context.Background(), "horario", "A")
	require.NoError(t, err)
	require.Contains(t, msg, "Aún no tengo el horario cargado")
}

func TestBuildMessageSourceError(t *testing.T) {
	b := testBook(&fakeScheduleSource{err: errors.New("db down")}, time.Now())

	_, err := b.BuildMessage(context.Background(), "horario", "A")
	require.Error(t, err)
	var engineErr *Error
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, ErrorConfigRead, engineErr.Code)
}
