// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerInContext(t *testing.T) {
	t.Parallel()

	t.Run("from nil context return null logger", func(t *testing.T) {
		t.Parallel()
		var ctx context.Context = nil
		log := FromContext(ctx)
		assert.Equal(t, log, nullLogger)
	})

	t.Run("from empty context return null logger", func(t *testing.T) {
		t.Parallel()

		log := FromContext(t.Context())
		assert.Equal(t, log, nullLogger)
	})

	t.Run("context with a logger return that logger", func(t *testing.T) {
		t.Parallel()

		log := NewLogger(os.Stderr)
		ctx := WithContext(t.Context(), log)

		logFromCtx := FromContext(ctx)
		assert.Equal(t, logFromCtx, log)
	})
}

func TestRegistryInContext(t *testing.T) {
	t.Parallel()

	t.Run("from empty context return the default registry", func(t *testing.T) {
		t.Parallel()

		assert.Same(t, Default(), RegistryFromContext(t.Context()))
	})

	t.Run("context with a registry return that registry", func(t *testing.T) {
		t.Parallel()

		registry := NewRegistry()
		ctx := WithRegistry(t.Context(), registry)
		assert.Same(t, registry, RegistryFromContext(ctx))
	})
}
