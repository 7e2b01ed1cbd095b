package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// Profile shows the signed-in user's record with an input for uploading
// a new profile image by file path.
type Profile struct {
	*tview.Flex
	info     *tview.TextView
	upload   *tview.InputField
	onUpload func(path string)
}

// NewProfile creates the profile page.
func NewProfile(p *Palette) *Profile {
	info := tview.NewTextView().SetDynamicColors(true)
	info.SetBorder(true).SetTitle(" Profile ").SetTitleColor(p.Title)
	info.SetBorderColor(p.Border)
	info.SetBackgroundColor(p.Bg)

	upload := tview.NewInputField().
		SetLabel(" image path > ").
		SetFieldWidth(0)
	upload.SetFieldBackgroundColor(p.Bg)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(info, 0, 1, true).
		AddItem(upload, 1, 0, false)

	v := &Profile{Flex: flex, info: info, upload: upload}

	upload.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && v.onUpload != nil {
			path := upload.GetText()
			if path != "" {
				v.onUpload(path)
				upload.SetText("")
			}
		}
	})

	return v
}

// SetOnUpload sets the callback fired with a chosen image path.
func (v *Profile) SetOnUpload(fn func(path string)) { v.onUpload = fn }

// UploadField exposes the path input for focus handling.
func (v *Profile) UploadField() *tview.InputField { return v.upload }

// Update redraws the profile details. avatarURL is the resolved image
// location, falling back to a generated avatar when the user has none.
func (v *Profile) Update(u *wire.User, avatarURL string) {
	v.info.Clear()
	if u == nil {
		_, _ = fmt.Fprint(v.info, "\n  Loading profile...")
		return
	}

	_, _ = fmt.Fprintf(v.info,
		"\n  [::b]%s[-:-:-]\n\n  Phone:  %s%s\n  Status: %s\n  Avatar: %s\n\n  [::d]Type an image path below and press Enter to upload.[-:-:-]",
		sanitizeForTerminal(senderName(*u)),
		u.CountryCode, u.ContactNo,
		presence(*u),
		avatarURL,
	)
}
