// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the log relay HTTP server of the chanlog application.
// It sets up the HTTP server using the Fiber framework, configures middleware for logging,
// and defines routes for health checks, service status and log ingestion.
package server
