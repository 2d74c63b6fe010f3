package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"project_asesoria/internal/entities"
)

// GateConfig is the business-hours configuration snapshot.
type GateConfig struct {
	Enabled  bool
	Timezone string
	OffReply string
	Windows  []entities.Window
}

// GateSource reads the gate configuration from the persistence port.
type GateSource interface {
	GateConfig(ctx context.Context) (GateConfig, error)
}

const gateCacheTTL = 20 * time.Second

// HoursGate decides whether automated replies are currently allowed. The
// configuration is cached for 20s; Refresh forces a reload after mutations.
// A failed configuration read fails open (replies allowed) so a broken
// settings table never silences the bot.
type HoursGate struct {
	source GateSource
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	cached   GateConfig
	cachedAt time.Time
	haveCfg  bool
}

func NewHoursGate(source GateSource, log zerolog.Logger) *HoursGate {
	return &HoursGate{
		source: source,
		log:    log.With().Str("comp", "hours_gate").Logger(),
		now:    time.Now,
	}
}

// Config returns the cached configuration, reloading when stale or forced.
func (g *HoursGate) Config(ctx context.Context, force bool) (GateConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.haveCfg && !force && g.now().Sub(g.cachedAt) < gateCacheTTL {
		return g.cached, nil
	}

	cfg, err := g.source.GateConfig(ctx)
	if err != nil {
		if g.haveCfg {
			return g.cached, newError(ErrorConfigRead, "gate config reload failed", err)
		}
		return GateConfig{}, newError(ErrorConfigRead, "gate config read failed", err)
	}
	g.cached = cfg
	g.cachedAt = g.now()
	g.haveCfg = true
	return cfg, nil
}

// Refresh drops the cache and reloads; callers that just mutated windows or
// settings use it so the change is visible immediately.
func (g *HoursGate) Refresh(ctx context.Context) error {
	_, err := g.Config(ctx, true)
	return err
}

// IsOpen reports whether automated replies are allowed right now.
func (g *HoursGate) IsOpen(ctx context.Context) bool {
	cfg, err := g.Config(ctx, false)
	if err != nil {
		g.log.Warn().Err(err).Msg("config read failed, failing open")
		return true
	}
	if !cfg.Enabled {
		return true
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		g.log.Warn().Str("tz", cfg.Timezone).Err(err).Msg("bad timezone, failing open")
		return true
	}
	now := g.now().In(loc)
	weekday := int(now.Weekday())
	minute := now.Hour()*60 + now.Minute()

	for _, w := range cfg.Windows {
		if !w.Enabled || w.Weekday != weekday {
			continue
		}
		if windowContains(w, minute) {
			return true
		}
	}
	return false
}

// OffReply returns the configured off-hours message, with a default.
func (g *HoursGate) OffReply(ctx context.Context) string {
	cfg, err := g.Config(ctx, false)
	if err != nil || strings.TrimSpace(cfg.OffReply) == "" {
		return DefaultOffHoursReply
	}
	return cfg.OffReply
}

// windowContains checks [start, end) on a minute-of-day basis. start > end is
// a window crossing midnight: match when now >= start or now < end.
func windowContains(w entities.Window, minute int) bool {
	start, err1 := ParseHHMM(w.Start)
	end, err2 := ParseHHMM(w.End)
	if err1 != nil || err2 != nil {
		return false
	}
	if start <= end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

// ParseHHMM converts "HH:MM" to minutes since midnight.
func ParseHHMM(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
