package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/taskflow/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = newRootCmd()

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	cfgFile   string
	ephemeral bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "taskflow",
		Short: "Terminal task manager",
		Long: `taskflow keeps a single list of tasks with a status, a priority and an
optional due date. Run it without arguments for the interactive view, or use
the subcommands to script changes to the same list.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is $HOME/.config/taskflow/config.yaml)")
	cmd.PersistentFlags().String("db", "", "database file (default is $HOME/.config/taskflow/taskflow.db)")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep tasks in memory only")

	cmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newEditCmd(opts),
		newClearCompletedCmd(opts),
		newClearCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

func initConfig(cmd *cobra.Command, opts *rootOptions) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if opts.cfgFile != "" {
		viper.SetConfigFile(opts.cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TASKFLOW")
	// e.g., TASKFLOW_PERSIST_DEBOUNCE_MS for persist.debounce_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.BindPFlag("storage.path", cmd.Root().PersistentFlags().Lookup("db")); err != nil {
		return fmt.Errorf("bind --db: %w", err)
	}

	// A missing default config file is fine; an explicit one must exist.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
