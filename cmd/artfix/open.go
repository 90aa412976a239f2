package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/corentel/artfix/internal/background"
	"github.com/corentel/artfix/internal/messaging"
)

var openStagger time.Duration

var openCmd = &cobra.Command{
	Use:   "open <url>...",
	Short: "Open every upload page, staggered",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opener := newPrintOpener(len(args))

		bus := messaging.NewBus()
		background.New(background.Config{
			UI:          consoleUI{},
			Opener:      opener,
			OpenStagger: openStagger,
			Logger:      logger,
		}).Register(bus)

		bus.Notify(cmd.Context(), messaging.ActionOpenAllMissingArtworks,
			messaging.OpenAllMissingArtworks{URLs: args})

		opener.Wait()
	},
}

func init() {
	openCmd.Flags().DurationVar(&openStagger, "stagger", 500*time.Millisecond, "Delay between opened pages")
	rootCmd.AddCommand(openCmd)
}
