// Package types holds the context keys shared by every command package.
package types

type ctxKey string

const (
	// ClientAppKey carries the *client.App built in the root PersistentPreRunE.
	ClientAppKey ctxKey = "app"

	// BackupManagerKey carries the *backup.Manager, nil in remote mode.
	BackupManagerKey ctxKey = "backup"
)
