// Package configcmder provides the config command for managing persistent
// secondbrain configuration stored in the .secondbrain/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent secondbrain configuration.

Configuration is stored as config.toml in the .secondbrain/ directory
and provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  vector_store.provider, vector_store.target, vector_store.sqlite_path,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  auth.jwt_secret, auth.token_issuer, auth.token_ttl_hours,
  frontend.origin

Use subcommands to get, set, or list configuration values:
  secondbrain config set <key> <value>    Set a configuration value
  secondbrain config get <key>            Get a configuration value
  secondbrain config list                 List all configuration values

Examples:
  secondbrain config set storage.driver postgres
  secondbrain config set embedding.model nomic-embed-text
  secondbrain config get frontend.origin
  secondbrain config list`

const configShortDesc string = "Manage persistent secondbrain configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
