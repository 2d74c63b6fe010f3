package usecases

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"project_asesoria/internal/entities"
	"project_asesoria/internal/interfaces"
)

// ConversationStore mediates the durable per-chat attributes. Get returns
// (nil, nil) when no record exists yet; writes are targeted upserts keyed by
// chat id, never bulk overwrites.
type ConversationStore interface {
	Get(ctx context.Context, chatID string) (*entities.Conversation, error)
	Create(ctx context.Context, chatID string) (*entities.Conversation, error)
	SetName(ctx context.Context, chatID, name string) error
	SetGroupPref(ctx context.Context, chatID, group string) error
	MarkTutorialAsked(ctx context.Context, chatID string) error
	MarkTutorialDone(ctx context.Context, chatID string) error
	IsPaused(ctx context.Context, chatID string) (bool, error)
	SetPaused(ctx context.Context, chatID string, paused bool) error
	TouchResponded(ctx context.Context, chatID string) error
}

// Sender submits one outbound text; the production implementation is the
// paced dispatch queue.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Config are the static knobs of the pipeline.
type Config struct {
	AdminIDs      []string
	PaymentLink   string
	PaymentNumber string
}

// Deps are the collaborators a pipeline consults. Notifier may be nil.
type Deps struct {
	Conversations ConversationStore
	State         *StateStore
	Gate          *HoursGate
	Payments      *PaymentDetector
	Schedule      *ScheduleBook
	Admin         *AdminCommands
	Outages       OutageStore
	History       *HistoryStore
	Sender        Sender
	Transport     interfaces.Transport
	Completer     interfaces.Completer
	Transcriber   interfaces.Transcriber
	Notifier      interfaces.Notifier
	Log           zerolog.Logger
}

// msgContext is the mutable working state of one inbound-message pass.
// Audio transcription rewrites raw/text before the completion fallback runs.
type msgContext struct {
	msg  entities.InboundMessage
	raw  string
	text string // normalized
	conv *entities.Conversation
}

// rule is one precedence step. run returns done=true when the message was
// consumed and no later rule may fire.
type rule struct {
	name string
	run  func(ctx context.Context, c *msgContext) (bool, error)
}

// Pipeline resolves every inbound message to at most one reply by walking a
// fixed-precedence rule chain and stopping at the first consuming handler.
type Pipeline struct {
	cfg   Config
	d     Deps
	log   zerolog.Logger
	rules []rule
}

func NewPipeline(cfg Config, d Deps) *Pipeline {
	p := &Pipeline{cfg: cfg, d: d, log: d.Log.With().Str("comp", "pipeline").Logger()}
	p.rules = []rule{
		{"self_control", p.ruleSelfControl},
		{"identity", p.ruleIdentity},
		{"pause_resume", p.rulePauseResume},
		{"drop_paused_or_group", p.ruleDropPausedOrGroup},
		{"opt_out", p.ruleOptOut},
		{"hours_gate", p.ruleHoursGate},
		{"admin_commands", p.ruleAdminCommands},
		{"pending_payment", p.rulePendingPayment},
		{"payment_detect", p.rulePaymentDetect},
		{"pending_schedule", p.rulePendingSchedule},
		{"pending_professor", p.rulePendingProfessor},
		{"quick_intents", p.ruleQuickIntents},
		{"classifier", p.ruleClassifier},
		{"structural", p.ruleStructural},
		{"audio_transcription", p.ruleAudioTranscription},
		{"completion", p.ruleCompletion},
	}
	return p
}

// Handle processes one inbound message to completion. Errors are reported to
// the caller for logging; the user-visible outcome is always a reply or
// silence, never a raw error.
func (p *Pipeline) Handle(ctx context.Context, msg entities.InboundMessage) error {
	raw := strings.TrimSpace(msg.Body)
	c := &msgContext{msg: msg, raw: raw, text: Normalize(raw)}

	conv, err := p.d.Conversations.Get(ctx, msg.ChatID)
	if err != nil {
		p.log.Warn().Str("chat", msg.ChatID).Err(err).Msg("conversation read failed")
	}
	c.conv = conv

	for _, r := range p.rules {
		done, err := r.run(ctx, c)
		if err != nil {
			return newError(ErrorHandler, "rule "+r.name, err)
		}
		if done {
			p.log.Debug().Str("chat", msg.ChatID).Str("rule", r.name).Msg("message consumed")
			return nil
		}
	}
	return nil
}

func (p *Pipeline) reply(ctx context.Context, chatID, text string) error {
	if err := p.d.Sender.Send(ctx, chatID, text); err != nil {
		return err
	}
	if err := p.d.Conversations.TouchResponded(ctx, chatID); err != nil {
		p.log.Warn().Str("chat", chatID).Err(err).Msg("responded-at update failed")
	}
	return nil
}

func bareID(id string) string {
	if i := strings.IndexByte(id, '@'); i >= 0 {
		return id[:i]
	}
	return id
}

func (p *Pipeline) isAdmin(senderID string) bool {
	s := bareID(senderID)
	for _, a := range p.cfg.AdminIDs {
		if s == bareID(a) {
			return true
		}
	}
	return false
}

// --- precedence steps ---

// Messages from the linked device itself. The operator typing /humano or /bot
// from their own phone toggles the target chat; everything else from self is
// ignored so the bot never answers its own sends.
func (p *Pipeline) ruleSelfControl(ctx context.Context, c *msgContext) (bool, error) {
	if !c.msg.FromSelf {
		return false, nil
	}
	switch c.text {
	case "/humano":
		if err := p.d.Conversations.SetPaused(ctx, c.msg.ChatID, true); err != nil {
			return true, err
		}
		p.d.History.Forget(c.msg.ChatID)
	case "/bot":
		if err := p.d.Conversations.SetPaused(ctx, c.msg.ChatID, false); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (p *Pipeline) ruleIdentity(ctx context.Context, c *msgContext) (bool, error) {
	if c.text != "id" && c.text != "/id" {
		return false, nil
	}
	return true, p.reply(ctx, c.msg.ChatID, "🆔 "+c.msg.ChatID)
}

func (p *Pipeline) rulePauseResume(ctx context.Context, c *msgContext) (bool, error) {
	switch c.text {
	case "/humano":
		if err := p.d.Conversations.SetPaused(ctx, c.msg.ChatID, true); err != nil {
			return true, err
		}
		p.d.History.Forget(c.msg.ChatID)
		return true, p.reply(ctx, c.msg.ChatID, ReplyPauseAck)
	case "/bot":
		if err := p.d.Conversations.SetPaused(ctx, c.msg.ChatID, false); err != nil {
			return true, err
		}
		return true, p.reply(ctx, c.msg.ChatID, ReplyResumeAck)
	}
	return false, nil
}

// Paused chats and groups are dropped silently. An authorized admin's slash
// command still falls through so the operator can run commands anywhere.
func (p *Pipeline) ruleDropPausedOrGroup(ctx context.Context, c *msgContext) (bool, error) {
	paused, err := p.d.Conversations.IsPaused(ctx, c.msg.ChatID)
	if err != nil {
		p.log.Warn().Str("chat", c.msg.ChatID).Err(err).Msg("paused read failed")
	}
	if !paused && !c.msg.IsGroup {
		return false, nil
	}
	if p.isAdmin(c.msg.SenderID) && strings.HasPrefix(c.text, "/") {
		return false, nil
	}
	return true, nil
}

var optOutRe = regexp.MustCompile(`^(stop|baja|parar|unsubscribe|cancelar( suscripcion)?|no (me escribas|molestar|enviar|mas( mensajes)?|quiero (mas )?mensajes))[!. ]*$`)

func (p *Pipeline) ruleOptOut(ctx context.Context, c *msgContext) (bool, error) {
	if !optOutRe.MatchString(c.text) {
		return false, nil
	}
	if err := p.d.Conversations.SetPaused(ctx, c.msg.ChatID, true); err != nil {
		return true, err
	}
	p.d.History.Forget(c.msg.ChatID)
	return true, p.reply(ctx, c.msg.ChatID, ReplyOptOutAck)
}

func (p *Pipeline) ruleHoursGate(ctx context.Context, c *msgContext) (bool, error) {
	if p.isAdmin(c.msg.SenderID) {
		return false, nil
	}
	if p.d.Gate.IsOpen(ctx) {
		return false, nil
	}
	return true, p.reply(ctx, c.msg.ChatID, p.d.Gate.OffReply(ctx))
}

func (p *Pipeline) ruleAdminCommands(ctx context.Context, c *msgContext) (bool, error) {
	if !p.isAdmin(c.msg.SenderID) {
		return false, nil
	}
	return p.d.Admin.Handle(ctx, c.msg.ChatID, c.raw)
}

var affirmativeRe = regexp.MustCompile(`^(si|s|yes|claro( que si)?|correcto|asi es|dale|de acuerdo|exacto|afirmativo)\b`)
var negativeRe = regexp.MustCompile(`^(no|nop|negativo|aun no|todavia no|para nada)\b`)

// Pending payment continuation: yes consumes and redirects, no consumes and
// falls through, anything else re-asks without consuming.
func (p *Pipeline) rulePendingPayment(ctx context.Context, c *msgContext) (bool, error) {
	if !p.d.State.HasPendingPayment(c.msg.ChatID) {
		return false, nil
	}
	switch {
	case affirmativeRe.MatchString(c.text):
		if p.d.State.ConsumePendingPayment(c.msg.ChatID) == nil {
			return false, nil // raced with expiry or another consumer
		}
		return true, p.reply(ctx, c.msg.ChatID, PaymentRedirectMessage(p.cfg.PaymentLink, p.cfg.PaymentNumber))
	case negativeRe.MatchString(c.text):
		p.d.State.ConsumePendingPayment(c.msg.ChatID)
		return false, nil
	default:
		return true, p.reply(ctx, c.msg.ChatID, ReplyPaymentAsk)
	}
}

func (p *Pipeline) rulePaymentDetect(ctx context.Context, c *msgContext) (bool, error) {
	switch p.d.Payments.Detect(c.raw, c.msg.Media) {
	case PaymentAuto:
		return true, p.reply(ctx, c.msg.ChatID, PaymentRedirectMessage(p.cfg.PaymentLink, p.cfg.PaymentNumber))
	case PaymentAsk:
		p.d.State.SetPendingPayment(c.msg.ChatID)
		return true, p.reply(ctx, c.msg.ChatID, ReplyPaymentAsk)
	}
	return false, nil
}

// Pending schedule continuation: an unambiguous A/B resolves and persists the
// preference; anything else re-asks without clearing the record.
func (p *Pipeline) rulePendingSchedule(ctx context.Context, c *msgContext) (bool, error) {
	if !p.d.State.HasPendingSchedule(c.msg.ChatID) {
		return false, nil
	}
	group := DetectGroup(c.text)
	if group == "" {
		return true, p.reply(ctx, c.msg.ChatID, ReplyScheduleWhich)
	}
	entry := p.d.State.ConsumePendingSchedule(c.msg.ChatID)
	if entry == nil {
		return false, nil
	}
	if err := p.d.Conversations.SetGroupPref(ctx, c.msg.ChatID, group); err != nil {
		p.log.Warn().Str("chat", c.msg.ChatID).Err(err).Msg("group preference write failed")
	}
	text, err := p.d.Schedule.BuildMessage(ctx, entry.Hint, group)
	if err != nil {
		return true, err
	}
	return true, p.reply(ctx, c.msg.ChatID, text)
}

func (p *Pipeline) rulePendingProfessor(ctx context.Context, c *msgContext) (bool, error) {
	if !p.d.State.IsAwaitingProfessor(c.msg.ChatID) {
		return false, nil
	}
	if !p.d.State.ConsumeAwaitingProfessor(c.msg.ChatID) {
		return false, nil
	}
	p.notifyAdmins(ctx, fmt.Sprintf("📞 Solicitud de contacto docente\nChat: %s\nDocente: %s", c.msg.ChatID, c.raw))
	return true, p.reply(ctx, c.msg.ChatID, ReplyProfessorInfo)
}

var (
	outageQueryRe  = regexp.MustCompile(`(q10|zoom|plataforma).*(caid|falla|no (funciona|sirve|carga|abre)|error|lent)|(caid|falla).*(q10|zoom|plataforma)|estado de (los )?servicios`)
	professorNumRe = regexp.MustCompile(`(numero|telefono|celular|contacto) (del?|de la) (profe(sora?)?|docente)`)
	recordingsRe   = regexp.MustCompile(`grabacion|grabada|clase grabada|donde veo la clase`)
	liveClassRe    = regexp.MustCompile(`(enlace|link) (de |del )?(zoom|la clase)|no puedo entrar|entrar a la clase|clase en vivo`)
	connectivityRe = regexp.MustCompile(`se (corta|congela|traba|pega)|mala (senal|conexion)|se cae el internet|no se escucha`)
	paymentInfoRe  = regexp.MustCompile(`(cuentas?|medios) de pago|donde (pago|consigno)|numero de cuenta|a que cuenta`)
	enrollmentRe   = regexp.MustCompile(`matricul|inscri(bir|pcion)`)
)

func (p *Pipeline) ruleQuickIntents(ctx context.Context, c *msgContext) (bool, error) {
	switch {
	case outageQueryRe.MatchString(c.text):
		statuses, err := p.d.Outages.ServiceStatuses(ctx)
		if err != nil {
			return true, newError(ErrorConfigRead, "service status read failed", err)
		}
		if notice := OutageNotice(statuses); notice != "" {
			return true, p.reply(ctx, c.msg.ChatID, notice)
		}
		return true, p.reply(ctx, c.msg.ChatID, ReplyServicesOK)
	case professorNumRe.MatchString(c.text):
		p.d.State.SetAwaitingProfessor(c.msg.ChatID)
		return true, p.reply(ctx, c.msg.ChatID, ReplyProfessorAsk)
	case recordingsRe.MatchString(c.text):
		return true, p.reply(ctx, c.msg.ChatID, ReplyRecordingsInfo)
	case liveClassRe.MatchString(c.text):
		return true, p.reply(ctx, c.msg.ChatID, ReplyLiveClassHelp)
	case connectivityRe.MatchString(c.text):
		return true, p.reply(ctx, c.msg.ChatID, ReplyConnectivityHelp)
	case paymentInfoRe.MatchString(c.text):
		return true, p.reply(ctx, c.msg.ChatID, PaymentInfo)
	case enrollmentRe.MatchString(c.text):
		return true, p.reply(ctx, c.msg.ChatID, MatriculationResponse)
	}
	return false, nil
}

func (p *Pipeline) ruleClassifier(ctx context.Context, c *msgContext) (bool, error) {
	if c.raw == "" {
		return false, nil
	}
	switch Classify(c.raw) {
	case CategorySchedule:
		group := DetectGroup(c.text)
		if group == "" && c.conv != nil && c.conv.GroupPref != nil {
			group = *c.conv.GroupPref
		}
		if group == "" {
			p.d.State.SetPendingSchedule(c.msg.ChatID, c.raw)
			return true, p.reply(ctx, c.msg.ChatID, ReplyScheduleAsk)
		}
		text, err := p.d.Schedule.BuildMessage(ctx, c.raw, group)
		if err != nil {
			return true, err
		}
		return true, p.reply(ctx, c.msg.ChatID, text)
	case CategoryToxic:
		return true, p.escalate(ctx, c, ReplyEscalationToxic, "lenguaje ofensivo")
	case CategoryDistress:
		return true, p.escalate(ctx, c, ReplyEscalationDistress, "posible crisis")
	}
	return false, nil
}

func (p *Pipeline) escalate(ctx context.Context, c *msgContext, replyText, reason string) error {
	p.notifyAdmins(ctx, fmt.Sprintf("🚨 Escalamiento (%s)\nChat: %s\nMensaje: %s", reason, c.msg.ChatID, c.raw))
	return p.reply(ctx, c.msg.ChatID, replyText)
}

func (p *Pipeline) notifyAdmins(ctx context.Context, text string) {
	for _, a := range p.cfg.AdminIDs {
		if err := p.d.Sender.Send(ctx, a, text); err != nil {
			p.log.Warn().Str("admin", a).Err(err).Msg("admin forward failed")
		}
	}
	if p.d.Notifier != nil {
		if err := p.d.Notifier.Notify(text); err != nil {
			p.log.Warn().Err(err).Msg("notifier failed")
		}
	}
}

var greetingRe = regexp.MustCompile(`^(hola|buenas|buen(os)? dias?|buenas tardes|buenas noches|hey|ola)[!.¡ ]*$`)
var thanksRe = regexp.MustCompile(`^(gracias|muchas gracias|mil gracias|ok|okay|vale|listo|perfecto|genial|entendido)[!. ]*$`)
var tutorialTopicRe = regexp.MustCompile(`capacitacion|curso|ascenso|subintendente|como funciona|informacion del curso`)

func (p *Pipeline) ruleStructural(ctx context.Context, c *msgContext) (bool, error) {
	chatID := c.msg.ChatID

	if c.msg.Media == entities.MediaSticker {
		return true, p.reply(ctx, chatID, ReplyStickerAck)
	}

	// First contact: a greeting with no durable record yet creates the record
	// and asks for a name.
	if c.conv == nil && greetingRe.MatchString(c.text) {
		conv, err := p.d.Conversations.Create(ctx, chatID)
		if err != nil {
			return true, err
		}
		c.conv = conv
		return true, p.reply(ctx, chatID, ReplyAskName)
	}

	// Record exists but the name was never captured: the first line of the
	// next message becomes the name.
	if c.conv != nil && c.conv.Name == nil && c.raw != "" && c.msg.Media == entities.MediaNone {
		name := strings.TrimSpace(strings.SplitN(c.raw, "\n", 2)[0])
		if name != "" && !strings.HasPrefix(name, "/") {
			if err := p.d.Conversations.SetName(ctx, chatID, name); err != nil {
				return true, err
			}
			c.conv.Name = &name
			return true, p.reply(ctx, chatID,
				fmt.Sprintf("¡Mucho gusto, %s! 😊 ¿En qué puedo ayudarte hoy?", name))
		}
	}

	// Tutorial continuation: after asking, the next reply resolves the gate.
	// An affirmative means the intro is already known and the message keeps
	// flowing; anything else gets the video. Either way the gate closes.
	if c.conv != nil && c.conv.TutorialAsked && !c.conv.TutorialDone && c.raw != "" {
		if err := p.d.Conversations.MarkTutorialDone(ctx, chatID); err != nil {
			return true, err
		}
		c.conv.TutorialDone = true
		if affirmativeRe.MatchString(c.text) {
			return false, nil
		}
		return true, p.reply(ctx, chatID, ReplyTutorialVideo)
	}

	// Tutorial gate: the first topical question asks before anything else.
	if c.conv != nil && !c.conv.TutorialAsked && tutorialTopicRe.MatchString(c.text) {
		if err := p.d.Conversations.MarkTutorialAsked(ctx, chatID); err != nil {
			return true, err
		}
		c.conv.TutorialAsked = true
		return true, p.reply(ctx, chatID, ReplyTutorialAsk)
	}

	if greetingRe.MatchString(c.text) {
		greet := "¡Hola! 😊 ¿En qué puedo ayudarte hoy?"
		if c.conv != nil && c.conv.Name != nil {
			greet = fmt.Sprintf("¡Hola, %s! 😊 ¿En qué puedo ayudarte hoy?", *c.conv.Name)
		}
		return true, p.reply(ctx, chatID, greet)
	}

	if thanksRe.MatchString(c.text) {
		return true, p.reply(ctx, chatID, ReplyThanksAck)
	}

	return false, nil
}

// Audio gets transcribed and the transcript substitutes the message body for
// the completion fallback. A failed transcription apologizes and stops.
func (p *Pipeline) ruleAudioTranscription(ctx context.Context, c *msgContext) (bool, error) {
	if c.msg.Media != entities.MediaAudio {
		return false, nil
	}
	audio, err := p.d.Transport.Download(ctx, c.msg)
	if err != nil {
		p.log.Warn().Str("chat", c.msg.ChatID).Err(err).Msg("audio download failed")
		return true, p.reply(ctx, c.msg.ChatID, ReplyAudioSorry)
	}
	transcript, err := p.d.Transcriber.Transcribe(ctx, audio, "voice.ogg")
	if err != nil {
		p.log.Warn().Str("chat", c.msg.ChatID).Err(err).Msg("transcription failed")
		return true, p.reply(ctx, c.msg.ChatID, ReplyAudioSorry)
	}
	c.raw = strings.TrimSpace(transcript)
	c.text = Normalize(c.raw)
	return false, nil
}

func (p *Pipeline) ruleCompletion(ctx context.Context, c *msgContext) (bool, error) {
	if c.raw == "" {
		return true, nil
	}

	system := BaseSystemPrompt
	if c.conv != nil && c.conv.Name != nil {
		system += " El usuario se llama " + *c.conv.Name + "."
	}
	turns := make([]entities.ChatTurn, 0, 2+len(FewShotExamples)+historyDepth)
	turns = append(turns, entities.ChatTurn{Role: "system", Content: system})
	turns = append(turns, FewShotExamples...)
	turns = append(turns, p.d.History.Recent(c.msg.ChatID)...)
	turns = append(turns, entities.ChatTurn{Role: "user", Content: c.raw})

	p.d.History.Append(c.msg.ChatID, "user", c.raw)

	answer, err := p.d.Completer.Complete(ctx, turns)
	if err != nil {
		p.log.Warn().Str("chat", c.msg.ChatID).Err(err).Msg("completion failed")
		return true, p.reply(ctx, c.msg.ChatID, ReplyGenericSorry)
	}
	p.d.History.Append(c.msg.ChatID, "assistant", answer)
	return true, p.reply(ctx, c.msg.ChatID, answer)
}
