package views

import (
	"github.com/gdamore/tcell/v2"

	"github.com/geekhirusha/chatapp/internal/theme"
)

// Palette holds the colors the views draw with.
type Palette struct {
	Bg       tcell.Color
	Fg       tcell.Color
	Border   tcell.Color
	Title    tcell.Color
	HeaderFg tcell.Color
	CursorFg tcell.Color
	CursorBg tcell.Color
	Me       string // tview color tag name for own messages
	Friend   string // tview color tag name for the counterparty
	Read     string // tview color tag name for the READ marker
}

// PaletteFor maps an applied color scheme to a palette.
func PaletteFor(o theme.Option) *Palette {
	if o == theme.Light {
		return &Palette{
			Bg:       tcell.ColorWhite,
			Fg:       tcell.ColorBlack,
			Border:   tcell.ColorDarkSlateGray,
			Title:    tcell.ColorDarkBlue,
			HeaderFg: tcell.ColorDarkSlateGray,
			CursorFg: tcell.ColorWhite,
			CursorBg: tcell.ColorDarkBlue,
			Me:       "darkgreen",
			Friend:   "darkblue",
			Read:     "blue",
		}
	}
	return &Palette{
		Bg:       tcell.ColorBlack,
		Fg:       tcell.ColorCadetBlue,
		Border:   tcell.ColorDodgerBlue,
		Title:    tcell.ColorFuchsia,
		HeaderFg: tcell.ColorWhite,
		CursorFg: tcell.ColorBlack,
		CursorBg: tcell.ColorAqua,
		Me:       "green",
		Friend:   "aqua",
		Read:     "dodgerblue",
	}
}
