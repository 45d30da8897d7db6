package cli

import (
	"errors"
	"fmt"

	"github.com/fmueller/speechtxt/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect speechtxt configuration",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfg == nil {
				return errors.New("configuration was not loaded")
			}
			effective := *app.cfg
			effective.Model = app.model
			effective.ModelDir = app.modelDir
			effective.Engine = app.engine
			effective.Language = app.language
			return effective.Dump(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List the environment variables speechtxt reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.Usage())
			return err
		},
	})

	return cmd
}
