// Command pages-deploy publishes a local directory as a new deployment of
// a static-site project. It is a thin wrapper around the pages library;
// the API token comes from the CLOUDFLARE_API_TOKEN environment variable.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/webfoundry/pages"
)

var (
	accountID     string
	project       string
	branch        string
	commitMessage string
	commitHash    string
	concurrency   int
	verbose       bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages-deploy <directory>",
		Short: "Deploy a directory to a static-site project",
		Long: `Deploy a directory to a static-site project through the direct upload API.

Every file below the directory is fingerprinted; only content the platform
does not already store is uploaded. Files named _headers, _redirects or
_worker.js are attached as deployment configuration instead of assets.

The API token is read from the CLOUDFLARE_API_TOKEN environment variable.`,
		Example: `  pages-deploy ./public --account-id 0123abcd --project my-site
  pages-deploy ./dist --account-id 0123abcd --project my-site --branch main --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	cmd.Flags().StringVar(&accountID, "account-id", "", "account identifier (required)")
	cmd.Flags().StringVar(&project, "project", "", "project name (required)")
	cmd.Flags().StringVar(&branch, "branch", "", "branch name recorded on the deployment")
	cmd.Flags().StringVar(&commitMessage, "commit-message", "", "commit message recorded on the deployment")
	cmd.Flags().StringVar(&commitHash, "commit-hash", "", "commit hash recorded on the deployment")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "concurrent upload workers (default 4)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-file progress")
	_ = cmd.MarkFlagRequired("account-id")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	apiToken := os.Getenv("CLOUDFLARE_API_TOKEN")
	if apiToken == "" {
		return fmt.Errorf("CLOUDFLARE_API_TOKEN is not set")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// The library's default filesystem is rooted at /, so resolve the
	// directory argument to an absolute path.
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	client, err := pages.New(accountID, project, apiToken,
		pages.WithConcurrency(concurrency),
		pages.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	result, err := client.DeployDirectory(cmd.Context(), dir,
		pages.WithBranch(branch),
		pages.WithCommitMessage(commitMessage),
		pages.WithCommitHash(commitHash),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deployment %s\n%s\n", result.ID, result.URL)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
