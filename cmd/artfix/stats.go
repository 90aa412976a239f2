package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/corentel/artfix/internal/errmsg"
	"github.com/corentel/artfix/internal/ledger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many artworks have been fixed",
	Run: func(cmd *cobra.Command, args []string) {
		l, err := ledger.Open()
		if err != nil {
			log.Fatal(errmsg.Format(errmsg.OpLedgerOpen, err))
		}
		defer l.Close()

		count, err := l.FixedCount()
		if err != nil {
			log.Fatal(errmsg.Format(errmsg.OpLedgerRead, err))
		}

		noun := "artworks"
		if count == 1 {
			noun = "artwork"
		}
		fmt.Printf("%s %s fixed\n", humanize.Comma(count), noun)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
