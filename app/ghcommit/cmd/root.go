package cmd

import (
	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cchalm/ghcommit/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "ghcommit",
	Short: "Commit local file changes to a GitHub branch through the API",
	Long: `ghcommit creates a commit on a remote GitHub branch from files in the local working tree.
The commit is made with the GraphQL createCommitOnBranch mutation, so it is signed by GitHub
and attributed to the owner of the token.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRootConfig,
}

// flags holds values given on the command line. They take precedence over the environment and the config file
var flags struct {
	configFile string
	repository string
	apiURL     string
	workdir    string
	verbose    bool
	jsonLogs   bool
	logFile    string
}

var cfg config.Config

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if flags.configFile != "" {
		if err := cfg.LoadFile(flags.configFile); err != nil {
			return err
		}
	}

	overrideString(cmd, &cfg.Repository, "repo", flags.repository)
	overrideString(cmd, &cfg.APIURL, "api-url", flags.apiURL)
	overrideString(cmd, &cfg.Workdir, "workdir", flags.workdir)
	overrideString(cmd, &cfg.LogFile, "log-file", flags.logFile)
	if flags.verbose {
		cfg.Verbose = true
	}
	return nil
}

func overrideString(cmd *cobra.Command, dest *string, name string, value string) {
	if cmd.Flags().Changed(name) {
		*dest = value
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Path to a YAML config file")
	pf.StringVar(&flags.repository, "repo", "", "Repository name in the format 'owner/repo' (default $GITHUB_REPOSITORY)")
	pf.StringVar(&flags.apiURL, "api-url", "", "GitHub API URL, for GitHub Enterprise Server (default $GITHUB_API_URL)")
	pf.StringVar(&flags.workdir, "workdir", "", "Directory that file paths are relative to (default $GITHUB_WORKSPACE or .)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "Log in JSON format")
	pf.StringVar(&flags.logFile, "log-file", "", "Also write logs to this file (default $GHCOMMIT_LOG_FILE)")
}
