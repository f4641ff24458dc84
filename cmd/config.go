package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/retreat-leads/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Prints configuration after merging defaults, config.yaml, .env and environment. API keys are masked.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return dumpConfig(os.Stdout, *cfg)
	},
}

func dumpConfig(w io.Writer, c config.Config) error {
	c.Google.Key = maskKey(c.Google.Key)
	c.Anthropic.Key = maskKey(c.Anthropic.Key)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return eris.Wrap(err, "encode config")
	}
	return enc.Close()
}

// maskKey keeps the last four characters of a key.
func maskKey(k string) string {
	switch {
	case k == "":
		return ""
	case len(k) <= 4:
		return "****"
	default:
		return "****" + k[len(k)-4:]
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}
