package terminal

import (
	"context"
	"os"

	"ui_verification/infrastructure/browser"
	"ui_verification/infrastructure/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the uiverify command tree on its own viper instance
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var configFile string

	load := func(cmd *cobra.Command) (*TerminalInterface, error) {
		cfg, err := config.Load(v, configFile)
		if err != nil {
			return nil, err
		}
		logger, err := NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		return NewTerminalInterface(cmd.Context(), cfg, logger, cmd.OutOrStdout())
	}

	root := &cobra.Command{
		Use:           "uiverify",
		Short:         "Check that a web app renders the expected text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("scenario-file", "", "YAML file with additional scenarios")
	v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("scenario_file", root.PersistentFlags().Lookup("scenario-file"))

	runCmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios (all when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := load(cmd)
			if err != nil {
				return err
			}
			_, err = term.Run(cmd.Context(), args)
			return err
		},
	}
	runCmd.Flags().Bool("headless", true, "run the browser headless")
	runCmd.Flags().String("browser", "chromium", "browser engine (chromium, firefox, webkit)")
	runCmd.Flags().String("report-dir", "verification/reports", "directory for JSON run reports")
	runCmd.Flags().Bool("no-fail", false, "exit 0 even when a scenario fails")
	v.BindPFlag("browser.headless", runCmd.Flags().Lookup("headless"))
	v.BindPFlag("browser.name", runCmd.Flags().Lookup("browser"))
	v.BindPFlag("report_dir", runCmd.Flags().Lookup("report-dir"))
	v.BindPFlag("no_fail", runCmd.Flags().Lookup("no-fail"))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := load(cmd)
			if err != nil {
				return err
			}
			term.List()
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <scenario>",
		Short: "Print a scenario definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, err := load(cmd)
			if err != nil {
				return err
			}
			return term.Show(args[0])
		},
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Download the playwright driver and browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("browser")
			return browser.InstallBrowsers(name)
		},
	}
	installCmd.Flags().String("browser", "chromium", "browser engine to install")

	root.AddCommand(runCmd, listCmd, showCmd, installCmd)
	return root
}

// Execute runs the root command against os.Args
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}
