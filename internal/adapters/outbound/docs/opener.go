package docs

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/browser"
)

// BrowserOpener implements domain.DocsOpener with the platform's default
// browser.
type BrowserOpener struct {
	start func(path string) error
}

func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{start: openFile}
}

// openFile keeps the launcher's own output off the report console.
func openFile(path string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenFile(path)
}

// Open launches the default browser on path.
func (o *BrowserOpener) Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := o.start(abs); err != nil {
		return fmt.Errorf("opening %s: %w", abs, err)
	}
	return nil
}
