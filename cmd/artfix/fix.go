package main

import (
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/corentel/artfix/internal/errmsg"
	"github.com/corentel/artfix/internal/fetchproxy"
	"github.com/corentel/artfix/internal/picker"
)

var fixOutDir string

var fixCmd = &cobra.Command{
	Use:   "fix <target-link>",
	Short: "Pick and attach replacement artwork for an album",
	Long: `fix opens the interactive artwork picker pre-filled with a search
derived from the album's catalog link, for example:

  artfix fix /music/Daft+Punk/Discovery

The chosen artwork and the optional title and description fields are
written to the output directory, mirroring an upload form submission.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		engine, dc := buildEngine(cfg)
		proxy := fetchproxy.New(cfg.AllowedImageHosts)

		m := picker.New(picker.Config{
			Engine:   engine,
			Fetcher:  proxy,
			Resolver: dc,
			Form:     picker.DirForm{Dir: fixOutDir},
			Settings: cfg,
			Query:    queryFromLink(args[0]),
		})

		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			log.Fatal(errmsg.Format(errmsg.OpImageAttach, err))
		}

		if fm, ok := final.(*picker.Model); ok && fm.Attached() {
			log.Info("Artwork written", "dir", fixOutDir, "candidate", fm.SelectedID())
		}
	},
}

// queryFromLink turns a catalog link like /music/Daft+Punk/Discovery into
// a search query. Anything that does not look like a catalog link is used
// as-is.
func queryFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	path := strings.Trim(u.EscapedPath(), "/")
	segments := strings.Split(path, "/")
	if len(segments) < 3 || segments[0] != "music" {
		return link
	}

	artist := decodeSegment(segments[1])
	album := decodeSegment(segments[len(segments)-1])
	if album == "_" {
		album = ""
	}
	return picker.DefaultQuery(artist, album)
}

func decodeSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "+", " ")
	if decoded, err := url.PathUnescape(seg); err == nil {
		return decoded
	}
	return seg
}

func init() {
	fixCmd.Flags().StringVarP(&fixOutDir, "out", "o", "artwork", "Directory the attached artwork is written to")
	rootCmd.AddCommand(fixCmd)
}
