// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"encoding/json"
	"maps"
	"net/http"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/chanlog/internal/logger"
)

const (
	logsPath = "/logs"

	invalidBodyMessage    = "invalid log record"
	missingMessageMessage = "missing message in log record"
	unknownChannelMessage = "unknown channel"
)

// logRecord is the body accepted by the logs route.
type logRecord struct {
	Channel string         `json:"channel,omitempty"`
	Level   string         `json:"level,omitempty"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// relay writes the records received over HTTP to the registry channels.
type relay struct {
	registry       *logger.Registry
	defaultChannel string
}

func relayRoutes(app *fiber.App, r *relay) {
	app.Post(logsPath, r.handle)
}

func (r *relay) handle(c *fiber.Ctx) error {
	record := new(logRecord)
	if err := json.Unmarshal(c.Body(), record); err != nil {
		return errorResponse(c, http.StatusBadRequest, invalidBodyMessage)
	}

	if record.Message == "" {
		return errorResponse(c, http.StatusBadRequest, missingMessageMessage)
	}

	channelName := record.Channel
	if channelName == "" {
		channelName = r.defaultChannel
	}

	channel, found := r.registry.Channel(channelName)
	if !found {
		return errorResponse(c, http.StatusNotFound, unknownChannelMessage+": "+channelName)
	}

	channel.Log(logger.LevelFromString(record.Level), record.Message, fieldsToArgs(record.Fields)...)
	return c.SendStatus(http.StatusNoContent)
}

// fieldsToArgs flattens fields to key/value pairs sorted by key.
func fieldsToArgs(fields map[string]any) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	return args
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"statusCode": status,
		"error":      http.StatusText(status),
		"message":    message,
	})
}
