// Package secondbraincmder
package secondbraincmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/secondbrainhq/secondbrain/cmd/secondbrain/config"
	servecmder "github.com/secondbrainhq/secondbrain/cmd/secondbrain/serve"
	versioncmder "github.com/secondbrainhq/secondbrain/cmd/version"
)

const secondbrainLongDesc string = `Second Brain is a personal bookmarking service with semantic search.

Save links, tweets, videos, and posts, ask questions about them in
natural language, and share your whole collection with a single link.

  secondbrain serve          Run the HTTP API server
  secondbrain config         Manage persistent configuration
  secondbrain version        Show version information`

const secondbrainShortDesc string = "Second Brain - bookmarks you can ask questions"

func NewSecondbrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secondbrain",
		Short: secondbrainShortDesc,
		Long:  secondbrainLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .secondbrain/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
