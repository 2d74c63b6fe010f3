package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"project_asesoria/internal/entities"
)

// ScheduleSource lists the class slots, ordered by group and position.
type ScheduleSource interface {
	Slots(ctx context.Context) ([]entities.ClassSlot, error)
}

// ScheduleBook renders schedule replies for a group, honoring "hoy" and
// "mañana" phrasing in the user's request.
type ScheduleBook struct {
	source ScheduleSource
	tz     *time.Location
	now    func() time.Time
}

func NewScheduleBook(source ScheduleSource, tz *time.Location) *ScheduleBook {
	if tz == nil {
		tz = time.UTC
	}
	return &ScheduleBook{source: source, tz: tz, now: time.Now}
}

var groupPrefixedRe = regexp.MustCompile(`(?:^|\s)(?:grupo|horario|para|del|de)\s+(?:grupo\s+)?([ab])(?:\s|$)`)
var groupAloneRe = regexp.MustCompile(`^([ab])$`)

// DetectGroup extracts an explicit A/B group token from normalized text:
// either the bare letter as the whole message, or preceded by
// "grupo"/"horario"/"para"/"del"/"de".
func DetectGroup(normalized string) string {
	t := strings.TrimSpace(normalized)
	if m := groupAloneRe.FindStringSubmatch(t); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := groupPrefixedRe.FindStringSubmatch(t); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

var spanishDays = []string{"domingo", "lunes", "martes", "miercoles", "jueves", "viernes", "sabado"}
var spanishMonths = []string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

func dayKeyFor(t time.Time) string {
	return fmt.Sprintf("%s %d de %s", spanishDays[int(t.Weekday())], t.Day(), spanishMonths[int(t.Month())-1])
}

// BuildMessage renders the schedule for a group. hint is the user's original
// request text; group must be "A" or "B" (empty renders every group).
func (b *ScheduleBook) BuildMessage(ctx context.Context, hint, group string) (string, error) {
	slots, err := b.source.Slots(ctx)
	if err != nil {
		return "", newError(ErrorConfigRead, "schedule read failed", err)
	}
	if len(slots) == 0 {
		return "Aún no tengo el horario cargado. Intenta más tarde.", nil
	}

	t := Normalize(hint)
	wantToday := regexp.MustCompile(`\bhoy\b`).MatchString(t)
	wantTomorrow := regexp.MustCompile(`\bmanana\b`).MatchString(t)

	var filterKey string
	if wantToday || wantTomorrow {
		d := b.now().In(b.tz)
		if wantTomorrow {
			d = d.AddDate(0, 0, 1)
		}
		filterKey = dayKeyFor(d)
	}

	// Group slots preserving source order: group -> ordered day keys -> slots.
	type daySlots struct {
		key   string
		slots []entities.ClassSlot
	}
	groups := map[string][]*daySlots{}
	var groupOrder []string
	for _, s := range slots {
		days, ok := groups[s.Group]
		if !ok {
			groupOrder = append(groupOrder, s.Group)
		}
		var day *daySlots
		for _, d := range days {
			if d.key == s.DayKey {
				day = d
				break
			}
		}
		if day == nil {
			day = &daySlots{key: s.DayKey}
			days = append(days, day)
		}
		if strings.TrimSpace(s.Subject) != "" {
			day.slots = append(day.slots, s)
		}
		groups[s.Group] = days
	}

	if group != "" {
		if _, ok := groups[group]; !ok {
			return fmt.Sprintf("No tengo horario para el *Grupo %s*.", group), nil
		}
		groupOrder = []string{group}
	}

	lines := []string{"🗓️ *Horario de clases*", "Zona horaria: " + b.tz.String(), ""}
	any := false

	for _, g := range groupOrder {
		var usable []*daySlots
		for _, d := range groups[g] {
			if filterKey != "" && Normalize(d.key) != filterKey {
				continue
			}
			if len(d.slots) > 0 {
				usable = append(usable, d)
			}
		}
		if len(usable) == 0 {
			continue
		}
		any = true
		lines = append(lines, fmt.Sprintf("*Grupo %s*", g))
		for _, d := range usable {
			lines = append(lines, fmt.Sprintf("• *%s*", capFirst(d.key)))
			for _, s := range d.slots {
				lines = append(lines, fmt.Sprintf("   - %s: %s", s.Slot, s.Subject))
			}
			lines = append(lines, "")
		}
	}

	if !any {
		if filterKey != "" {
			return "No hay clases registradas para ese día.", nil
		}
		return "Aún no tengo clases registradas.", nil
	}

	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	lines = append(lines, "", "_El horario está sujeto a modificaciones. Revisa los avisos oficiales._")
	return strings.Join(lines, "\n"), nil
}

func capFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
