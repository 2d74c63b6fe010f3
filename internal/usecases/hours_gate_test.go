package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"project_asesoria/internal/entities"
)

type fakeGateSource struct {
	cfg   GateConfig
	err   error
	calls int
}

func (f *fakeGateSource) GateConfig(ctx context.Context) (GateConfig, error) {
	f.calls++
	return f.cfg, f.err
}

func gateAt(t *testing.T, src *fakeGateSource, at time.Time) *HoursGate {
	t.Helper()
	g := NewHoursGate(src, zerolog.Nop())
	g.now = func() time.Time { return at }
	return g
}

// Monday 2025-08-04 at the given UTC hour:minute.
func mondayUTC(hour, min int) time.Time {
	return time.Date(2025, 8, 4, hour, min, 0, 0, time.UTC)
}

func TestGateDisabledIsAlwaysOpen(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{Enabled: false, Timezone: "UTC"}}
	g := gateAt(t, src, mondayUTC(3, 0))
	require.True(t, g.IsOpen(context.Background()))
}

func TestGateOpenInsideWindow(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{
		Enabled:  true,
		Timezone: "UTC",
		Windows: []entities.Window{
			{Weekday: 1, Start: "08:00", End: "18:00", Enabled: true},
		},
	}}

	require.True(t, gateAt(t, src, mondayUTC(8, 0)).IsOpen(context.Background()))
	require.True(t, gateAt(t, src, mondayUTC(17, 59)).IsOpen(context.Background()))
	require.False(t, gateAt(t, src, mondayUTC(18, 0)).IsOpen(context.Background()))
	require.False(t, gateAt(t, src, mondayUTC(7, 59)).IsOpen(context.Background()))
}

func TestGateWindowCrossingMidnight(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{
		Enabled:  true,
		Timezone: "UTC",
		Windows: []entities.Window{
			{Weekday: 1, Start: "22:00", End: "02:00", Enabled: true},
		},
	}}

	require.True(t, gateAt(t, src, mondayUTC(23, 30)).IsOpen(context.Background()))
	require.True(t, gateAt(t, src, mondayUTC(1, 59)).IsOpen(context.Background()))
	require.False(t, gateAt(t, src, mondayUTC(12, 0)).IsOpen(context.Background()))
}

func TestGateIgnoresDisabledWindowsAndOtherWeekdays(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{
		Enabled:  true,
		Timezone: "UTC",
		Windows: []entities.Window{
			{Weekday: 1, Start: "08:00", End: "18:00", Enabled: false},
			{Weekday: 2, Start: "08:00", End: "18:00", Enabled: true},
		},
	}}
	require.False(t, gateAt(t, src, mondayUTC(10, 0)).IsOpen(context.Background()))
}

func TestGateProjectsIntoConfiguredTimezone(t *testing.T) {
	// 14:00 UTC is 09:00 in Bogota (UTC-5).
	src := &fakeGateSource{cfg: GateConfig{
		Enabled:  true,
		Timezone: "America/Bogota",
		Windows: []entities.Window{
			{Weekday: 1, Start: "08:00", End: "10:00", Enabled: true},
		},
	}}
	require.True(t, gateAt(t, src, mondayUTC(14, 0)).IsOpen(context.Background()))
	require.False(t, gateAt(t, src, mondayUTC(16, 0)).IsOpen(context.Background()))
}

func TestGateCachesConfigWithinTTL(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{Enabled: false}}
	now := mondayUTC(10, 0)
	g := NewHoursGate(src, zerolog.Nop())
	g.now = func() time.Time { return now }

	g.IsOpen(context.Background())
	g.IsOpen(context.Background())
	require.Equal(t, 1, src.calls)

	now = now.Add(gateCacheTTL + time.Second)
	g.IsOpen(context.Background())
	require.Equal(t, 2, src.calls)
}

func TestGateForcedRefreshBypassesCache(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{Enabled: false}}
	g := gateAt(t, src, mondayUTC(10, 0))

	g.IsOpen(context.Background())
	require.NoError(t, g.Refresh(context.Background()))
	require.Equal(t, 2, src.calls)
}

func TestGateFailsOpenOnConfigError(t *testing.T) {
	src := &fakeGateSource{err: errors.New("db down")}
	g := gateAt(t, src, mondayUTC(3, 0))
	require.True(t, g.IsOpen(context.Background()))
}

func TestGateFailsOpenOnBadTimezone(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{Enabled: true, Timezone: "Mars/Olympus"}}
	g := gateAt(t, src, mondayUTC(3, 0))
	require.True(t, g.IsOpen(context.Background()))
}

func TestGateOffReplyFallsBackToDefault(t *testing.T) {
	src := &fakeGateSource{cfg: GateConfig{OffReply: "  "}}
	g := gateAt(t, src, mondayUTC(10, 0))
	require.Equal(t, DefaultOffHoursReply, g.OffReply(context.Background()))

	src2 := &fakeGateSource{cfg: GateConfig{OffReply: "Volvemos mañana"}}
	g2 := gateAt(t, src2, mondayUTC(10, 0))
	require.Equal(t, "Volvemos mañana", g2.OffReply(context.Background()))
}

func TestParseHHMM(t *testing.T) {
	v, err := ParseHHMM("08:30")
	require.NoError(t, err)
	require.Equal(t, 510, v)

	for _, bad := range []string{"8", "24:00", "12:60", "ab:cd", ""} {
		_, err := ParseHHMM(bad)
		require.Error(t, err, bad)
	}
}
