package usecases

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"project_asesoria/internal/entities"
)

// OutageStore persists the operational flag per external service.
type OutageStore interface {
	ServiceStatuses(ctx context.Context) ([]entities.ServiceStatus, error)
	SetServiceStatus(ctx context.Context, service string, operational bool, note string) error
}

// BroadcastList resolves the chat IDs an announcement goes to.
type BroadcastList interface {
	BroadcastTargets(ctx context.Context) ([]string, error)
}

var knownServices = map[string]string{
	"q10":        "Q10",
	"zoom":       "Zoom",
	"plataforma": "Plataforma",
}

// AdminCommands interprets the operator slash commands. Replies go back to
// the admin through the same paced sender the rest of the bot uses.
type AdminCommands struct {
	outages OutageStore
	targets BroadcastList
	sender  Sender
	log     zerolog.Logger
	sleep   func(time.Duration)
}

func NewAdminCommands(outages OutageStore, targets BroadcastList, sender Sender, log zerolog.Logger) *AdminCommands {
	return &AdminCommands{
		outages: outages,
		targets: targets,
		sender:  sender,
		log:     log.With().Str("comp", "admin").Logger(),
		sleep:   time.Sleep,
	}
}

// Handle runs an admin command. It returns false when the text is not a
// recognized command so the caller can keep processing the message.
func (a *AdminCommands) Handle(ctx context.Context, chatID, text string) (bool, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return false, nil
	}
	fields := strings.Fields(trimmed)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/aviso":
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))
		return true, a.broadcast(ctx, chatID, body)
	case "/q10", "/zoom", "/plataforma":
		return true, a.setStatus(ctx, chatID, strings.TrimPrefix(cmd, "/"), fields[1:])
	case "/status":
		return true, a.reportStatus(ctx, chatID)
	}
	return false, nil
}

func (a *AdminCommands) broadcast(ctx context.Context, adminChat, body string) error {
	if body == "" {
		return a.sender.Send(ctx, adminChat, "Uso: /aviso <mensaje>")
	}
	targets, err := a.targets.BroadcastTargets(ctx)
	if err != nil {
		return newError(ErrorConfigRead, "broadcast target read failed", err)
	}
	if len(targets) == 0 {
		return a.sender.Send(ctx, adminChat, "No hay destinatarios registrados para avisos.")
	}

	msg := "📢 *Aviso importante*\n" + body
	sent := 0
	for i, t := range targets {
		if t == adminChat {
			continue
		}
		if err := a.sender.Send(ctx, t, msg); err != nil {
			a.log.Warn().Str("chat", t).Err(err).Msg("broadcast send failed")
			continue
		}
		sent++
		if i < len(targets)-1 {
			// Space the fan-out so it reads like a person forwarding a note.
			a.sleep(time.Duration(400+rand.Intn(601)) * time.Millisecond)
		}
	}
	return a.sender.Send(ctx, adminChat, fmt.Sprintf("Aviso enviado a %d chats. ✅", sent))
}

func (a *AdminCommands) setStatus(ctx context.Context, adminChat, service string, args []string) error {
	label := knownServices[service]
	if len(args) == 0 {
		return a.sender.Send(ctx, adminChat, fmt.Sprintf("Uso: /%s ok|down [nota]", service))
	}
	var operational bool
	switch strings.ToLower(args[0]) {
	case "ok", "up":
		operational = true
	case "down", "caido", "caída", "caida":
		operational = false
	default:
		return a.sender.Send(ctx, adminChat, fmt.Sprintf("Uso: /%s ok|down [nota]", service))
	}
	note := strings.Join(args[1:], " ")

	if err := a.outages.SetServiceStatus(ctx, service, operational, note); err != nil {
		return newError(ErrorConfigRead, "service status write failed", err)
	}
	state := "operando con normalidad ✅"
	if !operational {
		state = "marcado como caído ⚠️"
	}
	return a.sender.Send(ctx, adminChat, fmt.Sprintf("*%s* %s", label, state))
}

func (a *AdminCommands) reportStatus(ctx context.Context, adminChat string) error {
	statuses, err := a.outages.ServiceStatuses(ctx)
	if err != nil {
		return newError(ErrorConfigRead, "service status read failed", err)
	}
	lines := []string{"*Estado de servicios*"}
	for _, s := range statuses {
		label := knownServices[s.Service]
		if label == "" {
			label = s.Service
		}
		mark := "✅"
		if !s.Operational {
			mark = "⚠️ caído"
		}
		line := fmt.Sprintf("• %s: %s", label, mark)
		if s.Note != "" {
			line += " — " + s.Note
		}
		lines = append(lines, line)
	}
	return a.sender.Send(ctx, adminChat, strings.Join(lines, "\n"))
}

// OutageNotice renders the user-facing answer to "is X down?" questions.
// It returns "" when every service is operational.
func OutageNotice(statuses []entities.ServiceStatus) string {
	var down []string
	for _, s := range statuses {
		if s.Operational {
			continue
		}
		label := knownServices[s.Service]
		if label == "" {
			label = s.Service
		}
		line := "• *" + label + "* presenta fallas"
		if s.Note != "" {
			line += ": " + s.Note
		}
		down = append(down, line)
	}
	if len(down) == 0 {
		return ""
	}
	return "⚠️ En este momento tenemos novedades:\n" + strings.Join(down, "\n") +
		"\nEstamos trabajando para restablecer el servicio. 🙏"
}
