package app

import (
	"fmt"

	"github.com/junoathena/gateway-backend/internal/clients/athena"
	"github.com/junoathena/gateway-backend/internal/clients/license"
	"github.com/junoathena/gateway-backend/internal/clients/mailer"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
)

type Clients struct {
	Athena  athena.Client
	License license.Client
	Mailer  mailer.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	athenaClient, err := athena.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init athena client: %w", err)
	}
	licenseClient, err := license.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init license client: %w", err)
	}
	// The mail relay is optional: without it mentor notifications are
	// logged and dropped.
	mailClient, err := mailer.NewFromEnv(log)
	if err != nil {
		log.Warn("mail relay not configured, mentor notifications disabled", "error", err)
		mailClient = nil
	}
	return Clients{
		Athena:  athenaClient,
		License: licenseClient,
		Mailer:  mailClient,
	}, nil
}
