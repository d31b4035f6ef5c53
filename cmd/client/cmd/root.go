package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"cogniflow/cmd/client/cmd/types"
	"cogniflow/internal/app/client"
	"cogniflow/internal/app/client/backup"
	"cogniflow/internal/app/client/config"
	"cogniflow/internal/utils/logger"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	app        *client.App
	backupMgr  *backup.Manager
	jsonOutput bool
	serverURL  string
	modeFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "cogniflow",
	Short: "CogniFlow - capture and organize notes, tasks and events",
	Long: `CogniFlow is a personal capture tool for notes, tasks, events,
links and checklists.

Data lives either in a local encrypted-at-rest database (embedded mode)
or on a CogniFlow server (remote mode). The mode is chosen once at
startup via STORAGE_MODE or the --mode flag.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	defer teardown()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command-line flags win over environment.
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if modeFlag != "" {
		cfg.StorageMode = modeFlag
	}

	log = logger.New(cfg.Env)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), types.ClientAppKey, app)

	// The snapshot manager only exists in embedded mode; remote data is the
	// server's responsibility.
	if store := app.LocalStore(); store != nil {
		backupMgr = backup.NewManager(store, backup.Config{
			Enabled:         cfg.Backup.Enabled,
			IntervalMinutes: cfg.Backup.IntervalMinutes,
			MaxBackups:      cfg.Backup.MaxBackups,
			AutoDownload:    cfg.Backup.AutoDownload,
			DownloadDir:     cfg.Backup.DownloadDir,
		}, log)

		mgrCtx := cmd.Context()
		app.Backend.Subscribe(func(ev client.AuthEvent) {
			switch ev.Type {
			case client.AuthLoggedIn:
				backupMgr.Start(mgrCtx)
			case client.AuthLoggedOut:
				backupMgr.Stop()
			}
		})
		if app.Backend.IsAuthenticated() {
			backupMgr.Start(mgrCtx)
		}
	}
	ctx = context.WithValue(ctx, types.BackupManagerKey, backupMgr)

	cmd.SetContext(ctx)
	return nil
}

func teardown() {
	if backupMgr != nil {
		backupMgr.Stop()
	}
	if app != nil {
		_ = app.Close()
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		configDir := filepath.Join(home, ".cogniflow")
		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file, environment and defaults apply.
	}

	return config.MustLoad(), nil
}

func init() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "CogniFlow server address (remote mode)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "storage mode: embedded or remote")

	// Subcommands attach themselves in init.go.
}
