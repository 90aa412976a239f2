package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/corentel/artfix/internal/background"
	"github.com/corentel/artfix/internal/errmsg"
	"github.com/corentel/artfix/internal/messaging"
	"github.com/corentel/artfix/internal/page"
	"github.com/corentel/artfix/internal/scanner"
)

var (
	scanWatch    bool
	scanInterval time.Duration
	scanPageURL  string
)

var scanCmd = &cobra.Command{
	Use:   "scan <url|file>",
	Short: "Scan a catalog page for missing artwork",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()

		snapshot, err := pageSnapshot(args[0])
		if err != nil {
			log.Fatal(errmsg.Format(errmsg.OpPageScan, err))
		}

		bus := messaging.NewBus()
		background.New(background.Config{
			UI:     consoleUI{},
			Logger: logger,
		}).Register(bus)

		s := scanner.New(scanner.Config{
			Snapshot: snapshot,
			Settings: cfg,
			Bus:      bus,
			Interval: scanInterval,
			Logger:   logger,
		})

		if !scanWatch {
			if err := s.ScanOnce(cmd.Context()); err != nil {
				log.Fatal(errmsg.Format(errmsg.OpPageScan, err))
			}
			printPending(s)
			return
		}

		if !s.Start() {
			log.Warn("Scanning is disabled by the highlight_missing_artworks setting")
			return
		}
		log.Info("Watching page for missing artwork", "interval", scanInterval)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		<-ctx.Done()
		s.Stop()

		printPending(s)
	},
}

// pageSnapshot builds a fresh-parse function for a URL or a local file.
func pageSnapshot(target string) (scanner.SnapshotFunc, error) {
	if target[0] != '/' && (len(target) < 4 || target[:4] != "http") {
		// Local file mode for saved pages.
		if _, err := os.Stat(target); err != nil {
			return nil, err
		}
		pageURL := scanPageURL
		return func() (*page.Document, error) {
			f, err := os.Open(target)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return page.Parse(f, pageURL)
		}, nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	return func() (*page.Document, error) {
		resp, err := client.Get(target)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("page fetch returned status %d", resp.StatusCode)
		}
		return page.Parse(resp.Body, target)
	}, nil
}

func printPending(s *scanner.Scanner) {
	pending := s.Pending()
	for _, item := range pending {
		fmt.Println(headerStyle.Render(item.TargetLink))
		fmt.Printf("  %s %s\n", mutedStyle.Render("upload:"), item.UploadURL)
		fmt.Printf("  %s %d\n", mutedStyle.Render("placeholders:"), len(item.Annotations))
	}

	switch len(pending) {
	case 0:
		log.Info("No missing artwork found")
	case 1:
		log.Info("1 missing artwork found")
	default:
		log.Info(fmt.Sprintf("%d missing artworks found", len(pending)))
	}
}

func init() {
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Keep scanning until interrupted")
	scanCmd.Flags().DurationVar(&scanInterval, "interval", time.Second, "Scan interval in watch mode")
	scanCmd.Flags().StringVar(&scanPageURL, "page-url", "", "Page address to assume for local files")
	rootCmd.AddCommand(scanCmd)
}
