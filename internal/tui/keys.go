package tui

import "github.com/gdamore/tcell/v2"

// action is one keybinding: a key or rune plus its handler.
type action struct {
	key     tcell.Key
	r       rune
	hint    string
	handler func()
}

func (a *action) matches(ev *tcell.EventKey) bool {
	if a.key != tcell.KeyRune {
		return ev.Key() == a.key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.r
}

// bindings holds keybindings scoped by page, with a global fallback.
type bindings struct {
	global []*action
	pages  map[string][]*action
}

func newBindings() *bindings {
	return &bindings{pages: make(map[string][]*action)}
}

func (b *bindings) addGlobal(a *action) {
	b.global = append(b.global, a)
}

func (b *bindings) addPage(page string, a *action) {
	b.pages[page] = append(b.pages[page], a)
}

// hints returns the key hints shown for a page, page-scoped first.
func (b *bindings) hints(page string) []string {
	var out []string
	for _, a := range b.pages[page] {
		if a.hint != "" {
			out = append(out, a.hint)
		}
	}
	for _, a := range b.global {
		if a.hint != "" {
			out = append(out, a.hint)
		}
	}
	return out
}

// handle dispatches ev to the first matching action on page. Reports
// whether a handler ran.
func (b *bindings) handle(page string, ev *tcell.EventKey) bool {
	for _, a := range b.pages[page] {
		if a.matches(ev) {
			a.handler()
			return true
		}
	}
	for _, a := range b.global {
		if a.matches(ev) {
			a.handler()
			return true
		}
	}
	return false
}
