package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// Thread displays one conversation's messages.
type Thread struct {
	*tview.TextView
	palette *Palette
}

// NewThread creates the message thread view.
func NewThread(p *Palette) *Thread {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ").SetTitleColor(p.Title)
	tv.SetBorderColor(p.Border)
	tv.SetBackgroundColor(p.Bg)

	return &Thread{TextView: tv, palette: p}
}

// SetHeader updates the title with the counterparty's name and presence.
func (t *Thread) SetHeader(name string, friend *wire.User) {
	title := fmt.Sprintf(" %s ", sanitizeForTerminal(name))
	if friend != nil {
		if p := presence(*friend); p != "" {
			title = fmt.Sprintf(" %s  %s ", sanitizeForTerminal(name), p)
		}
	}
	t.SetTitle(title)
}

// Update redraws the thread. msgs arrive newest first; display runs
// oldest first so new messages land at the bottom. isMe classifies
// ownership for alignment and markers.
func (t *Thread) Update(msgs []wire.Message, isMe func(wire.Message) bool) {
	t.Clear()

	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		ts := formatTimestamp(m.CreatedAt)
		body := sanitizeForTerminal(m.Message)

		if isMe(m) {
			marker := t.deliveryMarker(m.Status)
			_, _ = fmt.Fprintf(t, "[%s::b]You[-:-:-] [::d]%s[-:-:-] %s\n%s\n\n",
				t.palette.Me, ts, marker, body)
		} else {
			sender := sanitizeForTerminal(senderName(m.From))
			_, _ = fmt.Fprintf(t, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
				t.palette.Friend, sender, ts, body)
		}
	}

	t.ScrollToEnd()
}

// deliveryMarker renders the outbound delivery state: one tick sent,
// two delivered, two colored once read.
func (t *Thread) deliveryMarker(status string) string {
	switch status {
	case wire.DeliveryRead:
		return fmt.Sprintf("[%s]✓✓[-]", t.palette.Read)
	case wire.DeliveryDelivered:
		return "✓✓"
	case wire.DeliverySent:
		return "✓"
	default:
		return ""
	}
}

func senderName(u wire.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		return fmt.Sprintf("user %d", u.ID)
	}
	return name
}
