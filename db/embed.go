// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema contains the idempotent DDL for all mall tables.
//
//go:embed migrations/001_schema.sql
var Schema string
