package workflows

import (
	"context"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/sirupsen/logrus"
)

// StatusSweeper persiste los estados derivados por fecha (overdue, expired)
type StatusSweeper interface {
	SweepStatuses(ctx context.Context) (int, error)
}

// StatusSweepWorkflow marca periódicamente facturas vencidas y presupuestos caducados
type StatusSweepWorkflow struct {
	sweeper StatusSweeper
	logger  *logrus.Logger
}

// NewStatusSweepWorkflow crea una nueva instancia del workflow
func NewStatusSweepWorkflow(sweeper StatusSweeper, logger *logrus.Logger) *StatusSweepWorkflow {
	return &StatusSweepWorkflow{
		sweeper: sweeper,
		logger:  logger,
	}
}

// Register crea la función programada en el cliente
func (w *StatusSweepWorkflow) Register(client inngestgo.Client, cron string) error {
	_, err := inngestgo.CreateFunction(
		client,
		inngestgo.FunctionOpts{ID: "document-status-sweep", Name: "Document status sweep"},
		inngestgo.CronTrigger(cron),
		w.Run,
	)
	return err
}

// Run ejecuta el barrido como un paso reintentable
func (w *StatusSweepWorkflow) Run(ctx context.Context, input inngestgo.Input[map[string]any]) (any, error) {
	return step.Run(ctx, "sweep-statuses", w.sweep)
}

func (w *StatusSweepWorkflow) sweep(ctx context.Context) (SweepOutput, error) {
	updated, err := w.sweeper.SweepStatuses(ctx)
	if err != nil {
		w.logger.WithError(err).Error("Status sweep failed")
		return SweepOutput{}, err
	}
	return SweepOutput{Updated: updated}, nil
}

// SweepOutput representa el resultado del barrido
type SweepOutput struct {
	Updated int `json:"updated"`
}
