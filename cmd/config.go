package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect autocommit configuration",
		Long: `Inspect the configuration autocommit would run with. Values come from flags, ` +
			`environment variables (COMMIT_LANGUAGE, DEFAULT_COMMIT_MESSAGE and AUTOCOMMIT_*), ` +
			`the configuration file and built-in defaults, in that order.`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			shown := *cfg
			shown.APIKey = cfg.MaskedAPIKey()
			out, err := yaml.Marshal(&shown)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}

			w := cmd.OutOrStdout()
			if used := opts.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "# config file: %s\n", used)
			} else {
				fmt.Fprintln(w, "# config file: <none>")
			}
			fmt.Fprintf(w, "# model in use: %s\n", displayModel(cfg.ResolvedModel()))
			_, err = w.Write(out)
			return err
		},
	})
	return configCmd
}

func displayModel(model string) string {
	if model == "" {
		return "<tool default>"
	}
	return model
}
