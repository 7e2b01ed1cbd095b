package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/geekhirusha/chatapp/internal/wire"
)

// ChatList is the chat overview page: a search box over a table of
// friends with their last message.
type ChatList struct {
	*tview.Flex
	search *tview.InputField
	table  *tview.Table
	chats  []wire.ChatSummary

	onQuery func(q string)
	onOpen  func(friendID int, name string)
}

// NewChatList creates the chat list page.
func NewChatList(p *Palette) *ChatList {
	search := tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0)
	search.SetFieldBackgroundColor(p.Bg)

	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(p.CursorFg).Background(p.CursorBg))
	table.SetBorder(true).SetTitle(" Chats ").SetTitleColor(p.Title)
	table.SetBorderColor(p.Border)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(search, 1, 0, false).
		AddItem(table, 0, 1, true)

	cl := &ChatList{Flex: flex, search: search, table: table}

	search.SetChangedFunc(func(text string) {
		if cl.onQuery != nil {
			cl.onQuery(text)
		}
	})
	table.SetSelectedFunc(func(row, col int) {
		if id, name, ok := cl.selected(); ok && cl.onOpen != nil {
			cl.onOpen(id, name)
		}
	})

	return cl
}

// SetOnQuery sets the callback fired as the search text changes.
func (cl *ChatList) SetOnQuery(fn func(q string)) { cl.onQuery = fn }

// SetOnOpen sets the callback fired when a chat row is chosen.
func (cl *ChatList) SetOnOpen(fn func(friendID int, name string)) { cl.onOpen = fn }

// Search exposes the search input for focus handling.
func (cl *ChatList) Search() *tview.InputField { return cl.search }

// Table exposes the table for focus handling.
func (cl *ChatList) Table() *tview.Table { return cl.table }

// Query returns the current search text.
func (cl *ChatList) Query() string { return cl.search.GetText() }

// Update redraws the table from rows.
func (cl *ChatList) Update(rows []wire.ChatSummary) {
	cl.chats = rows
	cl.table.Clear()

	headers := []string{" Name", " Last Message", " Time"}
	for i, h := range headers {
		cl.table.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	}

	for i, c := range rows {
		row := i + 1
		name := c.FriendName
		if c.UnreadCount > 0 {
			name = fmt.Sprintf("* %s (%d)", name, c.UnreadCount)
		}
		cl.table.SetCell(row, 0, tview.NewTableCell(" "+sanitizeForTerminal(name)).SetMaxWidth(30).SetExpansion(1))
		cl.table.SetCell(row, 1, tview.NewTableCell(" "+sanitizeForTerminal(c.LastMessage)).SetMaxWidth(40).SetExpansion(2))
		cl.table.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(c.LastTimestamp)).SetMaxWidth(12))
	}
}

// Selected returns the highlighted chat row.
func (cl *ChatList) Selected() (friendID int, name string, ok bool) {
	return cl.selected()
}

func (cl *ChatList) selected() (int, string, bool) {
	row, _ := cl.table.GetSelection()
	idx := row - 1 // header row
	if idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx].FriendID, cl.chats[idx].FriendName, true
	}
	return 0, "", false
}
