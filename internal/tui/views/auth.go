package views

import (
	"strconv"
	"strings"

	"github.com/rivo/tview"
)

// Auth is the sign-in page: the backend has no token handshake, the
// client just needs to know which user id to connect as.
type Auth struct {
	*tview.Form
	onSignIn func(userID int, displayName string)
}

// NewAuth creates the sign-in form.
func NewAuth(p *Palette) *Auth {
	form := tview.NewForm()
	form.SetBorder(true).SetTitle(" Sign in ").SetTitleColor(p.Title)
	form.SetBorderColor(p.Border)
	form.SetBackgroundColor(p.Bg)

	a := &Auth{Form: form}

	form.AddInputField("User ID", "", 20, nil, nil)
	form.AddInputField("Display name", "", 30, nil, nil)
	form.AddButton("Sign in", a.submit)

	return a
}

// SetOnSignIn sets the callback invoked with a valid user id.
func (a *Auth) SetOnSignIn(fn func(userID int, displayName string)) {
	a.onSignIn = fn
}

func (a *Auth) submit() {
	if a.onSignIn == nil {
		return
	}
	idField, _ := a.GetFormItem(0).(*tview.InputField)
	nameField, _ := a.GetFormItem(1).(*tview.InputField)

	id, err := strconv.Atoi(strings.TrimSpace(idField.GetText()))
	if err != nil || id <= 0 {
		idField.SetText("")
		return
	}
	a.onSignIn(id, strings.TrimSpace(nameField.GetText()))
}
