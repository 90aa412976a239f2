// Command artfix is the terminal harness for the missing-artwork fixer:
// it runs the same scanner, search engine, picker and ledger the browser
// integration uses, against pages fetched over plain HTTP.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/corentel/artfix/internal/artwork"
	"github.com/corentel/artfix/internal/errmsg"
	"github.com/corentel/artfix/internal/settings"
	"github.com/corentel/artfix/internal/sources/applemusic"
	"github.com/corentel/artfix/internal/sources/bandcamp"
	"github.com/corentel/artfix/internal/sources/deezer"
	"github.com/corentel/artfix/internal/sources/discogs"
)

var (
	verbose bool
	logger  *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "artfix",
	Short: "Find and fix missing Last.fm artwork",
	Long: `artfix scans Last.fm catalog pages for missing-artwork placeholders,
searches Apple Music, Bandcamp, Deezer and Discogs for replacement covers,
and attaches the chosen artwork to an upload form.

Quick start:
  artfix scan https://www.last.fm/user/you/library
  artfix fix /music/Daft+Punk/Discovery`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
		logger = log.Default()
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
}

// loadSettings loads the user configuration or dies with a user-facing
// message.
func loadSettings() *settings.Settings {
	cfg, err := settings.Load()
	if err != nil {
		log.Fatal(errmsg.Format(errmsg.OpSettingsLoad, err))
	}
	return cfg
}

// buildEngine registers every provider adapter in interleaving order.
func buildEngine(cfg *settings.Settings) (*artwork.Engine, *discogs.Client) {
	dc := discogs.New(cfg.Discogs.SearchURL)

	e := artwork.NewEngine()
	e.Register(artwork.SourceAppleMusic,
		applemusic.New(cfg.AppleMusic.SearchURL, cfg.Country, cfg.ArtworkSize).Search)
	e.Register(artwork.SourceBandcamp, bandcamp.New(cfg.Bandcamp.SearchURL).Search)
	e.Register(artwork.SourceDeezer, deezer.New(cfg.Deezer.SearchURL, cfg.ArtworkSize).Search)
	e.Register(artwork.SourceDiscogs, dc.Search)
	return e, dc
}
