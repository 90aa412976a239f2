package main

import (
	"sync"

	"github.com/charmbracelet/log"
)

// consoleUI stands in for the browser toolbar: badge and title changes
// become log lines.
type consoleUI struct{}

func (consoleUI) SetBadgeText(tabID int, text string) {
	log.Debug("badge", "tab", tabID, "text", text)
}

func (consoleUI) SetTitle(tabID int, title string) {
	log.Debug("title", "tab", tabID, "text", title)
}

// printOpener stands in for tab creation: each URL is printed as it
// would be opened. Done unblocks once every expected open happened.
type printOpener struct {
	wg sync.WaitGroup
}

func newPrintOpener(expected int) *printOpener {
	o := &printOpener{}
	o.wg.Add(expected)
	return o
}

func (o *printOpener) OpenTab(url string) error {
	defer o.wg.Done()
	log.Info("Opening upload page", "url", url)
	return nil
}

func (o *printOpener) Wait() {
	o.wg.Wait()
}
