// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/chanlog/internal/info"
	"github.com/mia-platform/chanlog/internal/logger"
)

const (
	serviceName = "chanlog"
	loggerName  = "chanlog:server"
)

type Server interface {
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	Config

	app *fiber.App
}

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// NewServer returns a log relay server. Records received on the logs route are
// written to the channels already set up in registry, defaultChannel is used
// when a record does not name one.
func NewServer(ctx context.Context, registry *logger.Registry, defaultChannel string) (Server, error) {
	cfg, err := LoadServerConfig()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
		Immutable:             true,
	})
	log := logger.FromContext(ctx).WithName(loggerName)
	app.Use(logger.RequestMiddlewareLogger(log, []string{"/-/"}))

	statusRoutes(app, serviceName, info.Version)
	relayRoutes(app, &relay{registry: registry, defaultChannel: defaultChannel})

	return &impServer{
		app:    app,
		Config: *cfg,
	}, nil
}

func (s *impServer) Start() error {
	if err := s.app.Listen(net.JoinHostPort(s.HTTPHost, strconv.Itoa(s.HTTPPort))); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
