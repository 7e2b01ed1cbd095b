package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Composer is the text input at the bottom of an open thread.
type Composer struct {
	*tview.InputField
	onSend func(text string)
}

// NewComposer creates the composer.
func NewComposer(p *Palette) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	input.SetFieldBackgroundColor(p.Bg)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			// Empty and whitespace-only input is filtered downstream;
			// the field clears either way.
			c.onSend(c.GetText())
			c.SetText("")
		}
	})

	return c
}

// SetOnSend sets the callback fired on Enter.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}
