package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/models"
)

const sendTimeout = 10 * time.Second

type sendConfirmation struct {
	Confirmation Confirmation
}

// NotificationActor hands confirmations to a Sender one at a time.
type NotificationActor struct {
	sender Sender
	logger *zap.Logger
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *sendConfirmation:
		sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := a.sender.Send(sendCtx, msg.Confirmation)
		cancel()
		if err != nil {
			a.logger.Error("Failed to send order confirmation",
				zap.String("order_number", msg.Confirmation.OrderNumber),
				zap.Error(err))
			return
		}
		a.logger.Debug("Order confirmation sent",
			zap.String("order_number", msg.Confirmation.OrderNumber),
			zap.String("recipient", msg.Confirmation.Recipient))

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopping:
		a.logger.Info("Notification actor stopping")

	case *actor.Stopped:
		if err := a.sender.Close(); err != nil {
			a.logger.Warn("Failed to close sender", zap.Error(err))
		}
		a.logger.Info("Notification actor stopped")
	}
}

// ActorNotifier implements orders.Notifier by mailing confirmations to a
// NotificationActor. Sending never blocks the caller.
type ActorNotifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewActorNotifier(sender Sender, logger *zap.Logger) (*ActorNotifier, error) {
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{sender: sender, logger: logger.Named("notification-actor")}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}
	return &ActorNotifier{system: system, pid: pid, logger: logger}, nil
}

func (n *ActorNotifier) SendOrderConfirmation(_ context.Context, o models.Order) error {
	n.system.Root.Send(n.pid, &sendConfirmation{Confirmation: NewConfirmation(o)})
	return nil
}

// Stop drains queued confirmations and stops the actor.
func (n *ActorNotifier) Stop() error {
	if err := n.system.Root.PoisonFuture(n.pid).Wait(); err != nil {
		return fmt.Errorf("failed to stop notification actor: %w", err)
	}
	return nil
}
