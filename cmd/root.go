package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coverfetch",
		Short: "coverfetch downloads album thumbnails for your Spotify library.",
		Long: `coverfetch pages through your saved tracks or playlists and stores the
first album image of every song as <images>/<base64 name>@<id>.jpg.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.AddCommand(newDownloadCmd())
	return rootCmd
}

// Execute executes the root command. SIGINT and SIGTERM cancel the run;
// downloads already in flight are drained before exit.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
