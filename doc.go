// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotbox API server.

Ballotbox is the election lifecycle and vote-tabulation core of a school
election system: it decides whether voting is open, records each voter's
choices exactly once across multiple positions, aggregates results, and
gates administrative mutations behind a role permission matrix.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=ballotbox.db go run main.go

Or with flags:

	go run main.go -p 3330 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3330)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - REDIS_ADDR (-redis): shared reference-data cache

A .env file is loaded if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: the casting protocol, tabulation engine, and HTTP handlers
  - election: pure phase state machine over the configured voting window
  - access: role/resource/action permission evaluator
  - activity: fire-and-forget audit log sink
  - cache: short-TTL reference-data cache (memory or Redis)
  - router: route definitions using Go 1.22+ routing
  - middleware: permission gate, logging, JSON helpers
  - models: request/response/domain types and typed errors
  - auth: receipt token and voter ID generation
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
