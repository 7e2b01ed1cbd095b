package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// Directory is the user roster page: a filter box over a table of every
// registered user, for starting new chats and saving contacts.
type Directory struct {
	*tview.Flex
	filter *tview.InputField
	table  *tview.Table
	users  []wire.User

	onQuery func(q string)
	onOpen  func(userID int, name string)
}

// NewDirectory creates the directory page.
func NewDirectory(p *Palette) *Directory {
	filter := tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0)
	filter.SetFieldBackgroundColor(p.Bg)

	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(p.CursorFg).Background(p.CursorBg))
	table.SetBorder(true).SetTitle(" Users ").SetTitleColor(p.Title)
	table.SetBorderColor(p.Border)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(filter, 1, 0, false).
		AddItem(table, 0, 1, true)

	d := &Directory{Flex: flex, filter: filter, table: table}

	filter.SetChangedFunc(func(text string) {
		if d.onQuery != nil {
			d.onQuery(text)
		}
	})
	table.SetSelectedFunc(func(row, col int) {
		if u, ok := d.selectedUser(); ok && d.onOpen != nil {
			d.onOpen(u.ID, senderName(u))
		}
	})

	return d
}

// SetOnQuery sets the callback fired as the filter text changes.
func (d *Directory) SetOnQuery(fn func(q string)) { d.onQuery = fn }

// SetOnOpen sets the callback fired when a user row is chosen.
func (d *Directory) SetOnOpen(fn func(userID int, name string)) { d.onOpen = fn }

// Filter exposes the filter input for focus handling.
func (d *Directory) Filter() *tview.InputField { return d.filter }

// Table exposes the table for focus handling.
func (d *Directory) Table() *tview.Table { return d.table }

// Query returns the current filter text.
func (d *Directory) Query() string { return d.filter.GetText() }

// Update redraws the table from users.
func (d *Directory) Update(users []wire.User) {
	d.users = users
	d.table.Clear()

	headers := []string{" Name", " Phone", " Status"}
	for i, h := range headers {
		d.table.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	}

	for i, u := range users {
		row := i + 1
		d.table.SetCell(row, 0, tview.NewTableCell(" "+sanitizeForTerminal(senderName(u))).SetMaxWidth(30).SetExpansion(1))
		d.table.SetCell(row, 1, tview.NewTableCell(" "+u.CountryCode+u.ContactNo).SetMaxWidth(18))
		d.table.SetCell(row, 2, tview.NewTableCell(" "+presence(u)).SetMaxWidth(16))
	}
}

// Selected returns the highlighted user.
func (d *Directory) Selected() (wire.User, bool) {
	return d.selectedUser()
}

func (d *Directory) selectedUser() (wire.User, bool) {
	row, _ := d.table.GetSelection()
	idx := row - 1 // header row
	if idx >= 0 && idx < len(d.users) {
		return d.users[idx], true
	}
	return wire.User{}, false
}
