package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mmcdole/atelier/internal/domain"
)

// ErrClipboardUnavailable is returned when no clipboard tool is installed
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// startCommand starts a process without waiting for it; replaced in tests
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

// Opener opens artworks in the browser and builds share links
type Opener struct {
	command string // configured browser command, empty for system default
	siteURL string
	logger  *slog.Logger
}

// NewOpener creates an Opener for the public gallery at siteURL
func NewOpener(command, siteURL string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: strings.TrimSpace(command),
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger,
	}
}

// ShareLink returns the gallery page that shows the artwork
func (o *Opener) ShareLink(id domain.FavoriteID) string {
	q := url.Values{"artwork": {id.String()}}
	return o.siteURL + "/gallery.html?" + q.Encode()
}

// Open shows the artwork's gallery page in the configured browser or the
// system default
func (o *Opener) Open(id domain.FavoriteID) error {
	link := o.ShareLink(id)

	if o.command != "" {
		fields := strings.Fields(o.command)
		args := append(fields[1:], link)
		o.logger.Info("opening with configured command", "command", fields[0], "url", link)
		if err := startCommand(fields[0], args...); err != nil {
			return fmt.Errorf("failed to run %s: %w", fields[0], err)
		}
		return nil
	}

	return o.openDefault(link)
}

// openDefault opens the URL using the system default handler
func (o *Opener) openDefault(link string) error {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{link}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", link}
	default:
		name, args = "xdg-open", []string{link}
	}

	o.logger.Info("opening with system default", "os", runtime.GOOS, "url", link)
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// CopyLink puts the artwork's share link on the clipboard and returns it
func (o *Opener) CopyLink(id domain.FavoriteID) (string, error) {
	link := o.ShareLink(id)
	if clipboard.Unsupported {
		return link, ErrClipboardUnavailable
	}
	if err := writeClipboard(link); err != nil {
		o.logger.Warn("failed to copy link", "url", link, "error", err)
		return link, fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return link, nil
}
