// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"sync"

	"github.com/mia-platform/chanlog/internal/logger"
	"github.com/mia-platform/chanlog/internal/server"
)

// emitOptions holds the options set for the current emit function.
type emitOptions struct {
	message      string
	level        logger.Level
	channel      string
	channelsFile string
}

// validate validates the emit options and returns an error if something is wrong.
func (o *emitOptions) validate() error {
	if o.message == "" {
		return errNoMessage
	}

	return nil
}

// execute writes the message through the selected channel.
func (o *emitOptions) execute(ctx context.Context) error {
	if err := loadChannels(logger.RegistryFromContext(ctx), o.channelsFile); err != nil {
		return err
	}

	log, err := channelFromContext(ctx, o.channel)
	if err != nil {
		return err
	}

	log.Log(o.level, o.message)
	return nil
}

// serveOptions holds the options set for the current serve function.
type serveOptions struct {
	channel      string
	channelsFile string
	serverGetter func(context.Context, *logger.Registry, string) (server.Server, error)

	lock sync.Mutex
}

// execute runs the log relay server until ctx is done or the server fails.
func (o *serveOptions) execute(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	registry := logger.RegistryFromContext(ctx)
	if err := loadChannels(registry, o.channelsFile); err != nil {
		return err
	}

	log, err := channelFromContext(ctx, o.channel)
	if err != nil {
		return err
	}

	srv, err := o.serverGetter(ctx, registry, channelName(log))
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	log.Info("log relay server started")
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	log.Info("log relay server stopping")
	return errors.Join(srv.Stop(), <-errChan)
}

func newServer(ctx context.Context, registry *logger.Registry, defaultChannel string) (server.Server, error) {
	return server.NewServer(ctx, registry, defaultChannel)
}
