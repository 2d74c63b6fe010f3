package infrastructure

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"project_asesoria/internal/entities"
	"project_asesoria/internal/interfaces"
	"project_asesoria/internal/usecases"
)

// Dispatcher is the paced outbound sender. Every reply goes through the
// bounded queue and is delivered with a typing indicator and a human-paced
// delay so traffic never looks bursty.
type Dispatcher struct {
	queue     *SendQueue
	transport interfaces.Transport
	log       zerolog.Logger
	sleep     func(time.Duration)
	delay     func(string) time.Duration
}

func NewDispatcher(queue *SendQueue, transport interfaces.Transport, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:     queue,
		transport: transport,
		log:       log.With().Str("comp", "dispatcher").Logger(),
		sleep:     time.Sleep,
		delay:     TypingDelay,
	}
}

// Send queues one outbound text and blocks until delivery completes.
func (d *Dispatcher) Send(ctx context.Context, chatID, text string) error {
	job := entities.OutboundJob{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Text:       text,
		EnqueuedAt: time.Now(),
	}
	return d.queue.Do(func() error { return d.deliver(ctx, job) })
}

// deliver runs inside a queue slot. A failing typing indicator degrades to a
// bare send; a failing paced send gets one bare retry before the error
// surfaces.
func (d *Dispatcher) deliver(ctx context.Context, job entities.OutboundJob) error {
	if err := d.transport.SetTyping(ctx, job.ChatID); err != nil {
		d.log.Debug().Str("job", job.ID).Err(err).Msg("typing indicator failed, sending bare")
		return d.bareSend(ctx, job)
	}

	d.sleep(d.delay(job.Text))

	err := d.transport.Send(ctx, job.ChatID, job.Text)
	if cerr := d.transport.ClearTyping(ctx, job.ChatID); cerr != nil {
		d.log.Debug().Str("job", job.ID).Err(cerr).Msg("clear typing failed")
	}
	if err != nil {
		d.log.Warn().Str("job", job.ID).Err(err).Msg("paced send failed, retrying bare")
		return d.bareSend(ctx, job)
	}
	return nil
}

func (d *Dispatcher) bareSend(ctx context.Context, job entities.OutboundJob) error {
	if err := d.transport.Send(ctx, job.ChatID, job.Text); err != nil {
		return &usecases.Error{Code: usecases.ErrorTransportSend, Reason: "job " + job.ID, Err: err}
	}
	return nil
}
