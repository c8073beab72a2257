package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/myu-chat-backend/internal/app"
)

var (
	ingestMode string
	ingestDir  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index for a chat mode from local documents",
	Long: `Reads <dir>/<mode>/ (.txt, .md, .pdf), splits it into chunks, embeds
them and replaces the mode's collection entries source by source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ing, err := app.NewIngester(ctx)
		if err != nil {
			return err
		}
		defer ing.Close()

		summaries, err := ing.Run(ctx, ingestMode, ingestDir)
		for _, s := range summaries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: files=%d chunks=%d skipped=%d (%s)\n",
				s.Mode, s.Collection, s.Files, s.Chunks, len(s.Skipped), s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
		}
		return err
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMode, "mode", "admission", "mode to ingest: admission, student-support or all")
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "./data", "root directory holding one subdirectory per mode")
}
