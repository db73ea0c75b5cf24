package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cchalm/ghcommit/internal"
	"github.com/cchalm/ghcommit/internal/action"
	"github.com/cchalm/ghcommit/internal/logging"
	"github.com/cchalm/ghcommit/internal/telemetry"
)

var commitFlags struct {
	branch  string
	message string
	body    string
}

var commitCmd = &cobra.Command{
	Use:   "commit [flags] <path>...",
	Short: "Commit the given files to a branch",
	Long: `Commits the given paths to a branch of the repository. Paths that exist locally are added
with their current contents, tracked paths that no longer exist are deleted, and directories
are expanded to the files below them. The commit is created on top of the branch's current head.`,
	Example: `  ghcommit commit --repo octo/hello --branch main -m "Update docs" docs/ README.md`,
	RunE:    runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitFlags.branch, "branch", "b", "", "Branch to commit to (default: the repository's default branch)")
	commitCmd.Flags().StringVarP(&commitFlags.message, "message", "m", "", "Commit headline")
	commitCmd.Flags().StringVar(&commitFlags.body, "body", "", "Commit message body")

	rootCmd.AddCommand(commitCmd)
}

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Warn("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		logger.Fatal("Forcing shutdown")
	}()

	return ctx, cancel
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	if len(args) > 0 {
		cfg.Files = args
	}
	overrideString(cmd, &cfg.BranchName, "branch", commitFlags.branch)
	overrideString(cmd, &cfg.CommitMessage, "message", commitFlags.message)
	overrideString(cmd, &cfg.CommitBody, "body", commitFlags.body)

	closer := logging.Setup(logging.Options{Verbose: cfg.Verbose, JSON: flags.jsonLogs, File: cfg.LogFile})
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.TelemetryEnabled,
		Endpoint:       cfg.OTLPEndpoint,
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Failed to shut down telemetry: %v", err)
		}
	}()

	runner, err := internal.BuildRunner(cfg, logging.NewConsole(nil), tp)
	if err != nil {
		return err
	}
	inputs, err := internal.NewInputs(cfg)
	if err != nil {
		return err
	}

	logger.WithField("run_id", tp.RunID()).Infof("Committing to %s", cfg.Repository)
	outcome := runner.Run(ctx, inputs)
	return report(cmd, outcome)
}

// report prints the outcome of a run. Only a failed run is an error
func report(cmd *cobra.Command, outcome action.Outcome) error {
	switch outcome.Kind {
	case action.OutcomeCommitted:
		if outcome.Commit != nil && outcome.Commit.URL != "" {
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Commit.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Message())
		}
		return nil
	case action.OutcomeNoChanges:
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Message())
		return nil
	default:
		return outcome.Err
	}
}
