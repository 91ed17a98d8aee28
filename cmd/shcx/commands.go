package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pankaj-dahiya-devops/shcx/internal/config"
	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
	"github.com/pankaj-dahiya-devops/shcx/internal/version"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	level      logger.LevelFlag
	viper      *viper.Viper
}

// loadConfig resolves the configuration after flags have been parsed.
func (g *globalOptions) loadConfig() (*config.Config, error) {
	return config.NewLoader(g.viper, g.configPath).Load()
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{viper: config.NewViper()}

	root := &cobra.Command{
		Use:   "shcx",
		Short: "Export the AWS Security Hub control catalog enriched from the user guide",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logger.New(cmd.ErrOrStderr(), &g.level)
			cmd.SetContext(logger.WithLogger(cmd.Context(), log))
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default: ~/.config/shcx/config.yaml when present)")
	root.PersistentFlags().StringVar(&g.level.Level, "log-level", "info", "Log level: debug, info, warn or error")

	root.AddCommand(newExportCmd(g))
	root.AddCommand(newDoctorCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}

// bindFlags maps flag names onto configuration keys so flags take
// precedence over the file and the environment when they are set.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}
