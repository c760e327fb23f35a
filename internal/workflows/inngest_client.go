package workflows

import (
	"context"
	"fmt"
	"net/http"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/config"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// InngestClient maneja la configuración y registro de workflows
type InngestClient struct {
	client inngestgo.Client
	logger *logrus.Logger
}

// NewInngestClient crea una nueva instancia del cliente.
// Fuera de desarrollo las credenciales son obligatorias.
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	opts := inngestgo.ClientOpts{AppID: cfg.Inngest.AppID}

	if cfg.Inngest.EventKey != "" {
		opts.EventKey = &cfg.Inngest.EventKey
	} else if !cfg.Inngest.Dev {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}

	if cfg.Inngest.SigningKey != "" {
		opts.SigningKey = &cfg.Inngest.SigningKey
	} else if !cfg.Inngest.Dev {
		return nil, fmt.Errorf("INNGEST_SIGNING_KEY not configured")
	}

	client, err := inngestgo.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return &InngestClient{
		client: client,
		logger: logger,
	}, nil
}

// RegisterWorkflows registra todos los workflows con Inngest; sin sender no se registra el envío de emails
func (c *InngestClient) RegisterWorkflows(cron string, sweeper StatusSweeper, sender DocumentSender) error {
	c.logger.Info("Registering workflows with Inngest")

	if err := NewStatusSweepWorkflow(sweeper, c.logger).Register(c.client, cron); err != nil {
		return err
	}
	if sender != nil {
		if err := NewDocumentEmailWorkflow(sender, c.logger).Register(c.client); err != nil {
			return err
		}
	}

	c.logger.WithField("sweep_cron", cron).Info("Workflows registered")
	return nil
}

// Send publica un evento en Inngest
func (c *InngestClient) Send(ctx context.Context, event inngestgo.Event) error {
	id, err := c.client.Send(ctx, event)
	if err != nil {
		return fmt.Errorf("error sending %s event: %w", event.Name, err)
	}

	c.logger.WithFields(logrus.Fields{
		"event":    event.Name,
		"event_id": id,
	}).Debug("Inngest event sent")
	return nil
}

// Handler retorna el endpoint HTTP que Inngest invoca
func (c *InngestClient) Handler() http.Handler {
	return c.client.Serve()
}

// GetClient retorna el cliente de Inngest
func (c *InngestClient) GetClient() inngestgo.Client {
	return c.client
}
