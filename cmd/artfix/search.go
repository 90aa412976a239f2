package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/corentel/artfix/internal/artwork"
)

var searchSource string

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var searchCmd = &cobra.Command{
	Use:     "search <query>...",
	Aliases: []string{"s"},
	Short:   "Search the artwork providers",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		engine, _ := buildEngine(cfg)
		query := strings.Join(args, " ")

		source := searchSource
		if source == "" {
			source = cfg.SelectedSource
		}

		var result *artwork.Result
		if src, ok := artwork.ParseSource(source); ok {
			result = engine.Search(cmd.Context(), src, query)
		} else {
			result = engine.SearchAll(cmd.Context(), query)
		}

		printResult(result)
	},
}

func printResult(result *artwork.Result) {
	for _, c := range result.Candidates {
		line := c.Title()
		if c.ReleaseDate != "" {
			line += " (" + c.ReleaseDate + ")"
		}
		if c.TrackCount > 0 {
			line += fmt.Sprintf(" [%d tracks]", c.TrackCount)
		}
		fmt.Println(headerStyle.Render(line))
		if c.ExtraInfo != "" {
			fmt.Println("  " + mutedStyle.Render(c.ExtraInfo))
		}
		fmt.Printf("  %s  %s\n", mutedStyle.Render(c.ID), c.ArtworkURL)
	}

	log.Info(result.Status())
}

func init() {
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "",
		`Provider to search ("apple", "bandcamp", "deezer", "discogs", or "all")`)
	rootCmd.AddCommand(searchCmd)
}
