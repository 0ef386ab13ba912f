package cmd

import (
	"fmt"

	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/longkey1/bookchat/internal/bookchat/gateway"
	"github.com/longkey1/bookchat/internal/bookchat/widget"
)

// newGateway creates the answer service client from the configuration
func newGateway(cfg *config.Config) (*gateway.Client, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return gateway.NewClient(cfg.ChatEndpoint(),
		gateway.WithTimeout(timeout),
		gateway.WithHealthURL(cfg.HealthEndpoint()),
	), nil
}

// mountWidget loads the configuration and creates a fresh conversation bound to the answer service
func mountWidget() (*config.Config, *widget.Controller, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating gateway: %w", err)
	}
	return cfg, widget.New(gw), nil
}
