package configcmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/infrastructure/config"
)

const redacted = "******"

var secretKeys = map[string]bool{
	"password":       true,
	"api_key":        true,
	"callback_token": true,
	"smtp_password":  true,
}

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(env, configPath); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return writeSettings(cmd.OutOrStdout(), config.Settings())
		},
	})

	return cmd
}

func writeSettings(w io.Writer, settings map[string]interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(redact(settings))
}

// redact returns a copy of settings with secret leaves masked. Empty secrets stay empty.
func redact(settings map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(settings))
	for k, v := range settings {
		switch val := v.(type) {
		case map[string]interface{}:
			out[k] = redact(val)
		default:
			if secretKeys[k] && fmt.Sprint(v) != "" {
				out[k] = redacted
				continue
			}
			out[k] = v
		}
	}
	return out
}
