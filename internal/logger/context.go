// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"context"
)

// WithContext returns a new context with the provided logger.
func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// FromContext retrieves the logger from the context. If no logger is found, a new null logger is returned.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey).(Logger); ok {
			return logger
		}
	}

	return nullLogger
}

// WithRegistry returns a new context with the provided channel registry.
func WithRegistry(ctx context.Context, registry *Registry) context.Context {
	return context.WithValue(ctx, registryContextKey, registry)
}

// RegistryFromContext retrieves the registry from the context, falling back to the process wide one.
func RegistryFromContext(ctx context.Context) *Registry {
	if ctx != nil {
		if registry, ok := ctx.Value(registryContextKey).(*Registry); ok && registry != nil {
			return registry
		}
	}

	return Default()
}

// Unexported new type so that our context keys never collide with another.
type contextKeyType int

const (
	// contextKey is the key used for the context to store the logger.
	contextKey contextKeyType = iota
	// registryContextKey is the key used for the context to store the registry.
	registryContextKey
)
