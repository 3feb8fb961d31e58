package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/digitalmediaserver/crowdinsync/internal/config"
	"github.com/digitalmediaserver/crowdinsync/internal/crowdin"
	"github.com/digitalmediaserver/crowdinsync/internal/langsync"
	"github.com/digitalmediaserver/crowdinsync/internal/logging"
	"github.com/digitalmediaserver/crowdinsync/internal/vcs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	apiKey     string
	baseURL    string
	branch     string
	timeout    time.Duration
	retries    int
	logLevel   string
	logFormat  string
}

// session is everything a command needs once flags and the project file
// have been read.
type session struct {
	cfg    *config.Config
	client *crowdin.HTTPClient
	syncer *langsync.Syncer
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "crowdinsync",
		Short: "Synchronize localizable resource files with a Crowdin project",
		Long: `crowdinsync pushes source resource files to a Crowdin project and pulls
the translated archive back, mapping the checked-out Git branch to a
Crowdin branch.`,
		SilenceUsage: true,
	}

	flags.bind(root.PersistentFlags())

	root.AddCommand(
		newPushCmd(flags),
		newPlanCmd(flags),
		newPullCmd(flags),
		newTreeCmd(flags),
		newWatchCmd(flags),
	)
	return root
}

// bind registers the persistent flags. Defaults come from CROWDINSYNC_*
// environment variables.
func (f *globalFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", envOrDefault(envPrefix+"CONFIG", config.DefaultFile), "project file")
	fs.StringVar(&f.apiKey, "api-key", "", "project API key (default from the variable named by api_key_env, "+config.DefaultAPIKeyEnv+")")
	fs.StringVar(&f.baseURL, "base-url", envOrDefault(envPrefix+"BASE_URL", ""), "API base URL (default "+crowdin.DefaultBaseURL+")")
	fs.StringVar(&f.branch, "branch", envOrDefault(envPrefix+"BRANCH", ""), "use this branch instead of the checked-out Git branch")
	fs.DurationVar(&f.timeout, "timeout", durationEnv(envPrefix+"TIMEOUT", 0), "time to wait for response headers (0 waits indefinitely)")
	fs.IntVar(&f.retries, "retries", intEnv(envPrefix+"RETRIES", 0), "retries for throttled or failed requests")
	fs.StringVar(&f.logLevel, "log-level", envOrDefault(envPrefix+"LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", envOrDefault(envPrefix+"LOG_FORMAT", "console"), "log format (console, json)")
}

// open reads the project file and builds the client and syncer. Every
// configuration problem surfaces here, before any remote call.
func (f *globalFlags) open() (*session, error) {
	if err := logging.Init(logging.Config{Level: f.logLevel, Format: f.logFormat}); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	logging.L().Debug("loaded project file",
		logging.String("path", f.configPath),
		logging.String("project", cfg.Project),
		logging.Int("file_sets", len(cfg.Files)))

	apiKey := strings.TrimSpace(f.apiKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	}
	if apiKey == "" {
		return nil, &langsync.ConfigurationError{Field: "api_key", Reason: fmt.Sprintf("set --api-key or %s", cfg.APIKeyEnv)}
	}
	if f.retries < 0 {
		return nil, &langsync.ConfigurationError{Field: "retries", Reason: "must not be negative"}
	}
	baseURL := f.baseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

	client, err := crowdin.NewHTTPClient(crowdin.Options{
		BaseURL:    baseURL,
		Project:    cfg.Project,
		APIKey:     apiKey,
		MaxRetries: f.retries,
		Logger:     logging.L(),

		ResponseHeaderTimeout: f.timeout,
	})
	if err != nil {
		return nil, &langsync.ConfigurationError{Reason: err.Error()}
	}

	opts := cfg.SyncerOptions()
	opts.Logger = logging.L()
	if f.branch != "" {
		opts.Branches = langsync.StaticBranch(f.branch)
	} else {
		opts.Branches = vcs.GitBranch{Path: cfg.Dir}
	}
	syncer, err := langsync.NewSyncer(client, opts)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, client: client, syncer: syncer}, nil
}
