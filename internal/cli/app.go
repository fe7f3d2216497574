package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentx-labs/extctl/internal/activation"
	"github.com/agentx-labs/extctl/internal/backup"
	"github.com/agentx-labs/extctl/internal/config"
	"github.com/agentx-labs/extctl/internal/logging"
	"github.com/agentx-labs/extctl/internal/settings"
	"github.com/agentx-labs/extctl/internal/workspace"
)

// app is the set of services one command invocation works with.
type app struct {
	ws      workspace.Workspace
	opts    config.Options
	logger  *zap.Logger
	store   *settings.Store
	service *activation.Service
	backups *backup.Manager
}

func newApp(cmd *cobra.Command) (*app, error) {
	opts := config.Current()
	ws, err := workspace.New(projectDir, workspace.Options{
		UserConfigPath: opts.UserConfig,
		BackupDir:      opts.BackupDir,
	})
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(cmd.Context())
	store := settings.NewStore(ws.SettingsPath, logger)
	logger.Debug("workspace resolved",
		zap.String("project", ws.ProjectDir),
		zap.String("settings", ws.SettingsPath),
		zap.String("namespace", opts.Namespace),
	)

	return &app{
		ws:      ws,
		opts:    opts,
		logger:  logger,
		store:   store,
		service: activation.NewService(store, ws.Lister(), opts.Namespace, opts.LockTimeout, logger),
		backups: backup.NewManager(ws, opts.LockTimeout, logger),
	}, nil
}
