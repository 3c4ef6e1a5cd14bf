package sender

import (
	"context"
	"time"

	"github.com/mattyapp/matty-api/internal/domain/repository"
	"github.com/mattyapp/matty-api/internal/observability/logger"
	"golang.org/x/sync/errgroup"
)

const sendTimeout = 30 * time.Second

// Dispatcher entrega códigos en background con un pool de workers acotado.
// Notify nunca bloquea: si la cola está llena el código se descarta y se
// loguea; el registro ya persistido sigue siendo válido y el usuario puede
// pedir un reenvío.
type Dispatcher struct {
	sender Sender
	queue  chan *repository.VerificationCode
	g      *errgroup.Group
	cancel context.CancelFunc
}

// NewDispatcher crea un dispatcher con la cantidad de workers y el tamaño
// de cola indicados, ya corriendo.
func NewDispatcher(sender Sender, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	d := &Dispatcher{
		sender: sender,
		queue:  make(chan *repository.VerificationCode, queueSize),
		g:      g,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			d.run(ctx)
			return nil
		})
	}
	return d
}

// Notify encola el código para entrega. No bloquea.
func (d *Dispatcher) Notify(code *repository.VerificationCode) {
	select {
	case d.queue <- code:
	default:
		logger.L().Warn("delivery queue full, dropping code",
			logger.Component("sender.dispatcher"),
			logger.Destination(code.Destination),
		)
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case code, ok := <-d.queue:
			if !ok {
				return
			}
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			if err := d.sender.Send(sendCtx, code); err != nil {
				logger.L().Error("verification delivery failed",
					logger.Component("sender.dispatcher"),
					logger.Destination(code.Destination),
					logger.String("channel", string(code.Channel)),
					logger.Err(err),
				)
			}
			cancel()
		}
	}
}

// Close drena la cola, frena los workers y espera a que terminen.
func (d *Dispatcher) Close() {
	close(d.queue)
	// los workers salen al agotar la cola o al cancelar el contexto
	_ = d.g.Wait()
	d.cancel()
}
