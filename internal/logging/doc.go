// Package logging configures slog loggers and shared attribute helpers.
package logging
