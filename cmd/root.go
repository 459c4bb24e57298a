// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/internal/config"
	"github.com/xkilldash9x/solarsec-cli/internal/observability"
)

type ctxKey string

const configKey ctxKey = "config"

// rootOptions holds the persistent flags of one command tree.
type rootOptions struct {
	cfgFile      string
	envFile      string
	outputFormat string
}

// NewRootCommand builds a fresh command tree. Each call returns independent
// flag state, so tests and repeated invocations do not leak settings.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewStoreProvider())
}

func newRootCommand(provider storeProvider) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "solarsec",
		Short: "Solar inverter cybersecurity risk assessment for South Australian VPP installations.",
		Long: `solarsec models a solar installation, generates STRIDE threats, scores them with
DREAD, estimates the economic impact of attack scenarios against the SA1 spot
market and checks AEMO VPP and AS/NZS 4777 compliance.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			// 1. Initialize configuration loading
			if err := initializeConfig(v, opts); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "solarsec"})
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// 2. Create the configuration object from viper.
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "solarsec"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			// 3. Initialize the logger with the loaded config.
			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting solarsec", zap.String("version", Version))

			// 4. Store the validated config in the command's context for subcommands.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", "table", "console output format: table, json or yaml")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(
		newAnalyzeCmd(opts, provider),
		newThreatsCmd(opts),
		newDreadCmd(opts),
		newEconomicCmd(opts),
		newComplianceCmd(opts),
		newReportCmd(provider),
		newArchiveCmd(opts, provider),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command tree with a signal-aware context.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// initializeConfig reads the dotenv file, the config file and ENV variables if set.
func initializeConfig(v *viper.Viper, opts *rootOptions) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error reading env file: %w", err)
		}
	}

	if opts.cfgFile != "" {
		v.SetConfigFile(opts.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}
	return nil
}

// getConfigFromContext returns the configuration stored by PersistentPreRunE.
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}
