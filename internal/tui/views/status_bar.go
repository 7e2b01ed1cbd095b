package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/geekhirusha/chatapp/internal/socket"
)

// StatusBar is the one-line footer: signed-in user, connectivity,
// clock, key hints, and the transient flash notice.
type StatusBar struct {
	*tview.TextView
	user  string
	state socket.State
	hints []string
	flash string
}

// NewStatusBar creates the status bar.
func NewStatusBar(p *Palette) *StatusBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(p.Bg)
	return &StatusBar{TextView: tv, state: socket.StateClosed}
}

// SetUser updates the signed-in user display.
func (sb *StatusBar) SetUser(name string) {
	sb.user = name
	sb.render()
}

// SetConnectivity updates the connection indicator.
func (sb *StatusBar) SetConnectivity(s socket.State) {
	sb.state = s
	sb.render()
}

// SetHints replaces the key hints for the current page.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = hints
	sb.render()
}

// SetFlash sets the transient notice, empty to clear.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	conn := "[red]offline[-]"
	switch sb.state {
	case socket.StateOpen:
		conn = "[green]online[-]"
	case socket.StateConnecting:
		conn = "[yellow]connecting[-]"
	}

	user := sb.user
	if user == "" {
		user = "signed out"
	}

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s", user, conn, time.Now().Format("15:04"))
	if len(sb.hints) > 0 {
		line += " | " + strings.Join(sb.hints, " ")
	}
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}
	_, _ = fmt.Fprint(sb, line)
}
