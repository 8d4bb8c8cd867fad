package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	apiURL   string
	apiToken string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:           "profilectl",
	Short:         "Edit your Jobby candidate profile from the terminal",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("JOBBY_API_URL", "http://localhost:8080/v1"), "profile API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("JOBBY_TOKEN"), "session token (or JOBBY_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	rootCmd.AddCommand(showCmd, updateCmd, contactCmd, imageCmd, passwordCmd)
	imageCmd.AddCommand(imageUploadCmd, imageRemoveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			printError("%v", err)
		}
		stop()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireToken() error {
	if apiToken == "" {
		return fmt.Errorf("no session token; pass --token or set JOBBY_TOKEN")
	}
	return nil
}
