package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"

	"github.com/roach88/xpand/internal/event"
)

// UI prints notifications and icon changes as log lines of their own.
type UI struct {
	mu  sync.Mutex
	out io.Writer
}

// NewUI writes to out.
func NewUI(out io.Writer) *UI {
	return &UI{out: out}
}

// ShowNotification implements dispatch.UI.
func (u *UI) ShowNotification(_ context.Context, message string) error {
	return u.line(pterm.Info.Prefix.Text, message)
}

// SetIcon implements dispatch.UI.
func (u *UI) SetIcon(_ context.Context, status event.IconStatus) error {
	return u.line(iconStyle(status).Sprint(" "+string(status)+" "), "")
}

// OpenFolder implements dispatch.UI. The console has no file manager, so
// the path is printed.
func (u *UI) OpenFolder(_ context.Context, path string) error {
	return u.line(pterm.Info.Prefix.Text, "config: "+path)
}

func (u *UI) line(prefix, message string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, err := fmt.Fprintf(u.out, "\r\n%s %s\r\n", prefix, message)
	return err
}

func iconStyle(status event.IconStatus) *pterm.Style {
	switch status {
	case event.IconEnabled:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case event.IconDisabled:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	default:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	}
}

// Clipboard is an in-memory clipboard whose paste lands on a screen.
type Clipboard struct {
	screen *Screen

	mu   sync.Mutex
	text string
}

// NewClipboard pastes onto screen.
func NewClipboard(screen *Screen) *Clipboard {
	return &Clipboard{screen: screen}
}

// SetText replaces the clipboard contents.
func (c *Clipboard) SetText(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
}

// ReadText implements render.ClipboardReader.
func (c *Clipboard) ReadText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

// PasteText implements dispatch.Clipboard.
func (c *Clipboard) PasteText(_ context.Context, text string) error {
	c.paste(text)
	return nil
}

// PasteHTML implements dispatch.Clipboard. A terminal shows the plain
// fallback when there is one.
func (c *Clipboard) PasteHTML(_ context.Context, html, fallback string) error {
	if fallback != "" {
		c.paste(fallback)
		return nil
	}
	c.paste(html)
	return nil
}

// PasteImage implements dispatch.Clipboard.
func (c *Clipboard) PasteImage(_ context.Context, path string) error {
	c.paste("[image " + path + "]")
	return nil
}

// paste restores the previous contents afterwards, like the desktop
// injectors do.
func (c *Clipboard) paste(text string) {
	c.mu.Lock()
	prev := c.text
	c.text = text
	c.mu.Unlock()

	c.screen.Type(text)

	c.mu.Lock()
	c.text = prev
	c.mu.Unlock()
}
