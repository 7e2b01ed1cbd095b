// Package tui is the terminal client: tview pages over the projections,
// refreshed by bus events.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/app"
	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/imageurl"
	"github.com/geekhirusha/chatapp/internal/projection"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/socket"
	"github.com/geekhirusha/chatapp/internal/theme"
	"github.com/geekhirusha/chatapp/internal/tui/views"
	"github.com/geekhirusha/chatapp/internal/wire"
)

const flashDuration = 5 * time.Second

// App is the TUI shell: pages, keybindings, and the bus-driven redraw
// loop.
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	binds    *bindings
	flash    flash
	client   *app.Client
	proj     *app.Projections
	bus      *bus.Bus
	router   *router.Router
	resolver imageurl.Resolver
	logger   *zap.Logger

	statusBar *views.StatusBar
	authView  *views.Auth
	chatList  *views.ChatList
	thread    *views.Thread
	composer  *views.Composer
	directory *views.Directory
	profile   *views.Profile

	// conv is the open thread's projection, nil when no thread is open.
	conv     *projection.Conversation
	convName string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the TUI over an already-composed client.
func NewApp(client *app.Client, proj *app.Projections, b *bus.Bus, rt *router.Router, themes *theme.Manager, resolver imageurl.Resolver, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	palette := views.PaletteFor(themes.Applied())

	a := &App{
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		binds:    newBindings(),
		client:   client,
		proj:     proj,
		bus:      b,
		router:   rt,
		resolver: resolver,
		logger:   logger,

		statusBar: views.NewStatusBar(palette),
		authView:  views.NewAuth(palette),
		chatList:  views.NewChatList(palette),
		thread:    views.NewThread(palette),
		composer:  views.NewComposer(palette),
		directory: views.NewDirectory(palette),
		profile:   views.NewProfile(palette),

		ctx:    ctx,
		cancel: cancel,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	a.binds.addGlobal(&action{key: tcell.KeyRune, r: 'q', hint: "q:quit", handler: func() { a.app.Stop() }})

	a.binds.addPage("chats", &action{key: tcell.KeyRune, r: 'u', hint: "u:users", handler: func() { a.showDirectory() }})
	a.binds.addPage("chats", &action{key: tcell.KeyRune, r: 'p', hint: "p:profile", handler: func() { a.showProfile() }})
	a.binds.addPage("chats", &action{key: tcell.KeyRune, r: '/', hint: "/:search", handler: func() { a.app.SetFocus(a.chatList.Search()) }})
	a.binds.addPage("chats", &action{key: tcell.KeyRune, r: 'd', hint: "d:delete", handler: func() {
		if id, name, ok := a.chatList.Selected(); ok {
			a.proj.ChatList.DeleteChat(id)
			a.setFlash("Deleting chat with " + name)
		}
	}})
	a.binds.addPage("chats", &action{key: tcell.KeyRune, r: 'c', hint: "c:clear", handler: func() {
		if id, name, ok := a.chatList.Selected(); ok {
			a.proj.ChatList.ClearMessages(id)
			a.setFlash("Clearing messages with " + name)
		}
	}})
	a.binds.addPage("chats", &action{key: tcell.KeyRune, r: 'o', hint: "o:signout", handler: func() { a.signOut() }})

	a.binds.addPage("directory", &action{key: tcell.KeyRune, r: '/', hint: "/:filter", handler: func() { a.app.SetFocus(a.directory.Filter()) }})
	a.binds.addPage("directory", &action{key: tcell.KeyRune, r: 's', hint: "s:save contact", handler: func() {
		if u, ok := a.directory.Selected(); ok {
			a.proj.Contacts.Save(u)
			a.setFlash("Saving contact...")
		}
	}})

	a.binds.addPage("chat", &action{key: tcell.KeyRune, r: 'i', hint: "i:write", handler: func() { a.app.SetFocus(a.composer.InputField) }})

	a.binds.addPage("profile", &action{key: tcell.KeyRune, r: 'i', hint: "i:image path", handler: func() { a.app.SetFocus(a.profile.UploadField()) }})
}

func (a *App) setupCallbacks() {
	a.authView.SetOnSignIn(func(userID int, displayName string) {
		go func() {
			if err := a.client.SignIn(userID, displayName); err != nil {
				a.logger.Warn("sign-in connect failed", zap.Error(err))
				a.flash.set("Connect failed: "+err.Error(), flashDuration)
			}
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetUser(a.client.Session().DisplayName())
				a.statusBar.SetFlash(a.flash.get())
				a.showChats()
			})
		}()
	})

	a.chatList.SetOnQuery(func(q string) {
		a.chatList.Update(a.proj.ChatList.View(q))
	})
	a.chatList.SetOnOpen(a.openChat)

	a.directory.SetOnQuery(func(q string) {
		a.directory.Update(a.proj.Directory.View(q))
	})
	a.directory.SetOnOpen(a.openChat)

	a.composer.SetOnSend(func(text string) {
		if a.conv != nil {
			a.conv.Send(text)
		}
	})

	a.profile.SetOnUpload(func(path string) {
		go func() {
			result, err := a.proj.Profile.UploadImage(a.ctx, path)
			switch {
			case err != nil:
				a.flash.set("Upload failed: "+err.Error(), flashDuration)
			case !result.Status:
				msg := result.Message
				if msg == "" {
					msg = "rejected by server"
				}
				a.flash.set("Upload failed: "+msg, flashDuration)
			default:
				a.flash.set("Profile image updated", flashDuration)
			}
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetFlash(a.flash.get())
			})
		}()
	})
}

func (a *App) setupLayout() {
	chatFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.thread, 0, 1, false).
		AddItem(a.composer, 1, 0, false)

	a.pages.AddPage("auth", a.authView, true, false)
	a.pages.AddPage("chats", a.chatList, true, true)
	a.pages.AddPage("chat", chatFlex, true, false)
	a.pages.AddPage("directory", a.directory, true, false)
	a.pages.AddPage("profile", a.profile, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		page, _ := a.pages.GetFrontPage()

		if event.Key() == tcell.KeyEscape {
			switch page {
			case "chat":
				a.closeChat()
				return nil
			case "directory", "profile":
				a.showChats()
				return nil
			}
			// Escape from an input field returns focus to the page.
			if _, ok := a.app.GetFocus().(*tview.InputField); ok {
				a.focusPage(page)
				return nil
			}
		}

		// Text inputs consume their own keys.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}
		if page == "auth" {
			return event
		}

		if a.binds.handle(page, event) {
			return nil
		}
		return event
	})
}

func (a *App) focusPage(page string) {
	switch page {
	case "chats":
		a.app.SetFocus(a.chatList.Table())
	case "directory":
		a.app.SetFocus(a.directory.Table())
	case "chat":
		a.app.SetFocus(a.thread)
	}
}

func (a *App) showChats() {
	a.pages.SwitchToPage("chats")
	a.statusBar.SetHints(a.binds.hints("chats"))
	a.chatList.Update(a.proj.ChatList.View(a.chatList.Query()))
	a.app.SetFocus(a.chatList.Table())
	// Screen focus re-requests the list so it catches up on anything
	// missed while another page was up.
	a.proj.ChatList.Refresh()
}

func (a *App) showDirectory() {
	a.pages.SwitchToPage("directory")
	a.statusBar.SetHints(a.binds.hints("directory"))
	a.directory.Update(a.proj.Directory.View(a.directory.Query()))
	a.app.SetFocus(a.directory.Table())
	a.proj.Directory.Refresh()
}

func (a *App) showProfile() {
	a.pages.SwitchToPage("profile")
	a.statusBar.SetHints(a.binds.hints("profile"))
	a.renderProfile()
	a.proj.Profile.Refresh()
}

func (a *App) renderProfile() {
	u := a.proj.Profile.User()
	avatar := ""
	if u != nil {
		avatar = a.resolver.Best(&u.ProfileImage, u.FirstName, u.LastName)
	}
	a.profile.Update(u, avatar)
}

func (a *App) openChat(friendID int, name string) {
	a.closeChat()

	conv := projection.NewConversation(friendID, a.client.Session(), a.router, a.bus, a.logger)
	conv.Start()
	a.conv = conv
	a.convName = name

	a.thread.SetHeader(name, nil)
	a.thread.Update(conv.Messages(), conv.IsMe)
	a.pages.SwitchToPage("chat")
	a.statusBar.SetHints(a.binds.hints("chat"))
	a.app.SetFocus(a.composer.InputField)
}

func (a *App) closeChat() {
	if a.conv == nil {
		return
	}
	a.conv.Stop()
	a.conv = nil
	if page, _ := a.pages.GetFrontPage(); page == "chat" {
		a.showChats()
	}
}

func (a *App) signOut() {
	if err := a.client.SignOut(); err != nil {
		a.setFlash("Sign out failed: " + err.Error())
		return
	}
	a.statusBar.SetUser("")
	a.pages.SwitchToPage("auth")
	a.statusBar.SetHints(nil)
}

func (a *App) setFlash(msg string) {
	a.flash.set(msg, flashDuration)
	a.statusBar.SetFlash(a.flash.get())
}

// Run starts the redraw loops and blocks in tview's event loop.
func (a *App) Run() error {
	if a.client.SignedIn() {
		a.statusBar.SetUser(a.client.Session().DisplayName())
		a.pages.SwitchToPage("chats")
		a.statusBar.SetHints(a.binds.hints("chats"))
	} else {
		a.pages.SwitchToPage("auth")
	}
	a.statusBar.SetConnectivity(a.client.Connectivity())

	go a.eventLoop()
	go a.clockLoop()

	return a.app.Run()
}

// eventLoop turns bus events into redraws of whatever page shows them.
func (a *App) eventLoop() {
	ch, unsub := a.bus.Subscribe("", 128)
	defer unsub()

	for {
		select {
		case evt := <-ch:
			a.handleEvent(evt)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindConnState:
		state, ok := evt.Payload.(socket.State)
		if !ok {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetConnectivity(state)
		})
	case bus.KindChatListUpdated:
		a.app.QueueUpdateDraw(func() {
			if page, _ := a.pages.GetFrontPage(); page == "chats" {
				a.chatList.Update(a.proj.ChatList.View(a.chatList.Query()))
			}
		})
	case bus.KindConversationMessage:
		a.app.QueueUpdateDraw(func() {
			if a.conv == nil {
				return
			}
			a.thread.Update(a.conv.Messages(), a.conv.IsMe)
			a.thread.SetHeader(a.convName, a.conv.Friend())
		})
	case bus.KindProfileUpdated:
		a.app.QueueUpdateDraw(func() {
			if page, _ := a.pages.GetFrontPage(); page == "profile" {
				a.renderProfile()
			}
		})
	case bus.KindDirectoryUpdated:
		a.app.QueueUpdateDraw(func() {
			if page, _ := a.pages.GetFrontPage(); page == "directory" {
				a.directory.Update(a.proj.Directory.View(a.directory.Query()))
			}
		})
	case bus.KindContactSaved:
		ack, ok := evt.Payload.(wire.ContactSaveAck)
		if !ok {
			return
		}
		msg := ack.Message
		if msg == "" {
			if ack.ResponseStatus {
				msg = "Contact saved"
			} else {
				msg = "Contact not saved"
			}
		}
		a.flash.set(msg, flashDuration)
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetFlash(a.flash.get())
		})
	}
}

// clockLoop keeps the status bar clock moving and expires the flash.
func (a *App) clockLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.statusBar.SetFlash(a.flash.get())
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop shuts the TUI down.
func (a *App) Stop() {
	a.cancel()
	a.closeChat()
	a.app.Stop()
}
