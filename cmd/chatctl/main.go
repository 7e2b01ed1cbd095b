// chatctl is the scripting companion to chattui: one-shot commands that
// talk to the backend socket directly and print to stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geekhirusha/chatapp/internal/config"
	"github.com/geekhirusha/chatapp/internal/router"
	"github.com/geekhirusha/chatapp/internal/session"
	"github.com/geekhirusha/chatapp/internal/socket"
	"github.com/geekhirusha/chatapp/internal/store"
	"github.com/geekhirusha/chatapp/internal/theme"
	"github.com/geekhirusha/chatapp/internal/wire"
)

func main() {
	configFlag := flag.String("config", "", "config file path (overrides ~/.chatapp/config.toml)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	timeoutFlag := flag.Duration("timeout", 10*time.Second, "how long to wait for a server response")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c := &ctl{json: *jsonFlag, timeout: *timeoutFlag}
	c.loadConfig(*configFlag)

	switch args[0] {
	case "signin":
		if len(args) < 2 {
			fatalf("usage: chatctl signin <user-id> [display-name]")
		}
		c.cmdSignIn(args[1], strings.Join(args[2:], " "))
	case "signout":
		c.cmdSignOut()
	case "whoami":
		c.cmdWhoami()
	case "theme":
		c.cmdTheme(args[1:])
	case "chats":
		c.cmdChats()
	case "users":
		c.cmdUsers()
	case "profile":
		c.cmdProfile()
	case "send":
		if len(args) < 3 {
			fatalf("usage: chatctl send <friend-id> <text>")
		}
		c.cmdSend(args[1], strings.Join(args[2:], " "))
	case "tail":
		c.cmdTail()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: chatctl [--config <path>] [--json] [--timeout <dur>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  signin <id> [name]        Store the identity to connect as")
	fmt.Fprintln(os.Stderr, "  signout                   Clear the stored identity")
	fmt.Fprintln(os.Stderr, "  whoami                    Show the stored identity")
	fmt.Fprintln(os.Stderr, "  theme [light|dark|system] Show or set the color scheme")
	fmt.Fprintln(os.Stderr, "  chats                     List chats")
	fmt.Fprintln(os.Stderr, "  users                     List all registered users")
	fmt.Fprintln(os.Stderr, "  profile                   Show the signed-in user's profile")
	fmt.Fprintln(os.Stderr, "  send <friend-id> <text>   Send a message")
	fmt.Fprintln(os.Stderr, "  tail                      Stream classified frames until interrupted")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

type ctl struct {
	json    bool
	timeout time.Duration
	cfg     *config.Config
}

func (c *ctl) loadConfig(path string) {
	if path == "" {
		path = session.ConfigPath()
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		fatalf("error: %v", err)
	}
	c.cfg = cfg
}

// openStore opens the shared prefs database. chatctl and chattui share
// it; sqlite's WAL mode keeps concurrent access safe.
func (c *ctl) openStore() *store.DB {
	if err := session.EnsureDir(); err != nil {
		fatalf("error: %v", err)
	}
	db, err := store.Open(session.DBPath())
	if err != nil {
		fatalf("error: %v", err)
	}
	if _, err := db.Migrate(); err != nil {
		fatalf("error: %v", err)
	}
	return db
}

func (c *ctl) sessionManager(db *store.DB) *session.Manager {
	m, err := session.NewManager(db)
	if err != nil {
		fatalf("error: %v", err)
	}
	return m
}

func (c *ctl) cmdSignIn(idArg, name string) {
	id, err := strconv.Atoi(idArg)
	if err != nil || id <= 0 {
		fatalf("error: invalid user id %q", idArg)
	}
	db := c.openStore()
	defer func() { _ = db.Close() }()

	if err := c.sessionManager(db).SignIn(id, name); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Signed in as user %d\n", id)
}

func (c *ctl) cmdSignOut() {
	db := c.openStore()
	defer func() { _ = db.Close() }()

	if err := c.sessionManager(db).SignOut(); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Println("Signed out")
}

func (c *ctl) cmdWhoami() {
	db := c.openStore()
	defer func() { _ = db.Close() }()

	m := c.sessionManager(db)
	id, ok := m.UserID()
	if !ok {
		fmt.Println("Not signed in")
		os.Exit(1)
	}
	if c.json {
		outputJSON(map[string]any{"userId": id, "displayName": m.DisplayName()})
		return
	}
	fmt.Printf("User ID: %d\n", id)
	if name := m.DisplayName(); name != "" {
		fmt.Printf("Name:    %s\n", name)
	}
}

func (c *ctl) cmdTheme(args []string) {
	db := c.openStore()
	defer func() { _ = db.Close() }()

	themes := theme.NewManager(db)
	if len(args) == 0 {
		fmt.Printf("Theme: %s (applied: %s)\n", themes.Preference(), themes.Applied())
		return
	}
	opt := theme.Option(args[0])
	if err := themes.SetPreference(opt); err != nil {
		fatalf("error: %v", err)
	}
	fmt.Printf("Theme set to %s\n", opt)
}

// connect dials the socket as the stored identity and attaches a router.
func (c *ctl) connect() (*socket.Conn, *router.Router, func()) {
	db := c.openStore()
	m := c.sessionManager(db)
	userID, ok := m.UserID()
	_ = db.Close()
	if !ok {
		fatalf("error: not signed in (run: chatctl signin <id>)")
	}

	conn := socket.New(socket.Options{
		URL:          socket.Endpoint(c.cfg.ServerURL, userID),
		PingInterval: c.cfg.PingInterval(),
	}, zap.NewNop())
	rt := router.New(conn, nil)
	detach := rt.Attach(conn)

	if err := conn.Connect(); err != nil {
		fatalf("error: %v", err)
	}
	return conn, rt, func() {
		detach()
		conn.Close()
	}
}

// request publishes one envelope and waits for the first frame of
// wantType. There is no correlation on the wire; first matching push
// wins, which is all a one-shot tool needs.
func (c *ctl) request(reqType string, fields map[string]any, wantType string) json.RawMessage {
	_, rt, cleanup := c.connect()
	defer cleanup()

	got := make(chan json.RawMessage, 1)
	unsub := rt.Subscribe(wantType, func(payload json.RawMessage) {
		select {
		case got <- payload:
		default:
		}
	})
	defer unsub()

	rt.Publish(reqType, fields)

	select {
	case payload := <-got:
		return payload
	case <-time.After(c.timeout):
		fatalf("error: no %s response within %s", wantType, c.timeout)
		return nil
	}
}

func (c *ctl) cmdChats() {
	payload := c.request(wire.TypeGetChatList, nil, wire.TypeFriendList)

	var chats []wire.ChatSummary
	if err := json.Unmarshal(payload, &chats); err != nil {
		fatalf("error: decode friend_list: %v", err)
	}
	if c.json {
		outputJSON(chats)
		return
	}
	if len(chats) == 0 {
		fmt.Println("No chats.")
		return
	}
	for _, ch := range chats {
		unread := ""
		if ch.UnreadCount > 0 {
			unread = fmt.Sprintf(" (%d unread)", ch.UnreadCount)
		}
		fmt.Printf("%-6d %-24s %s%s\n", ch.FriendID, ch.FriendName, ch.LastMessage, unread)
	}
}

func (c *ctl) cmdUsers() {
	payload := c.request(wire.TypeGetAllUsers, nil, wire.TypeAllUsers)

	var users []wire.User
	if err := json.Unmarshal(payload, &users); err != nil {
		fatalf("error: decode all_users: %v", err)
	}
	if c.json {
		outputJSON(users)
		return
	}
	for _, u := range users {
		fmt.Printf("%-6d %-24s %s%s  %s\n", u.ID, u.FirstName+" "+u.LastName, u.CountryCode, u.ContactNo, u.Status)
	}
}

func (c *ctl) cmdProfile() {
	payload := c.request(wire.TypeSetUserProfile, nil, wire.TypeUserProfile)

	var u wire.User
	if err := json.Unmarshal(payload, &u); err != nil {
		fatalf("error: decode user_profile: %v", err)
	}
	if c.json {
		outputJSON(u)
		return
	}
	fmt.Printf("ID:     %d\n", u.ID)
	fmt.Printf("Name:   %s %s\n", u.FirstName, u.LastName)
	fmt.Printf("Phone:  %s%s\n", u.CountryCode, u.ContactNo)
	fmt.Printf("Status: %s\n", u.Status)
	if u.ProfileImage != "" {
		fmt.Printf("Image:  %s\n", u.ProfileImage)
	}
}

func (c *ctl) cmdSend(friendArg, text string) {
	friendID, err := strconv.Atoi(friendArg)
	if err != nil || friendID <= 0 {
		fatalf("error: invalid friend id %q", friendArg)
	}
	if strings.TrimSpace(text) == "" {
		fatalf("error: empty message")
	}

	_, rt, cleanup := c.connect()
	defer cleanup()

	// Wait for the server to push the message back; that is the only
	// confirmation the protocol offers.
	echoed := make(chan wire.Message, 1)
	unsub := rt.Subscribe(wire.TypeChatMessage, func(payload json.RawMessage) {
		var m wire.Message
		if json.Unmarshal(payload, &m) == nil && m.To.ID == friendID {
			select {
			case echoed <- m:
			default:
			}
		}
	})
	defer unsub()

	rt.Publish(wire.TypeSendChatMessage, map[string]any{
		"to":          friendID,
		"message":     text,
		"clientMsgId": uuid.NewString(),
	})

	select {
	case m := <-echoed:
		fmt.Printf("Sent (%s)\n", m.Status)
	case <-time.After(c.timeout):
		fmt.Println("Sent (no echo received)")
	}
}

func (c *ctl) cmdTail() {
	conn, _, cleanup := c.connect()
	defer cleanup()

	frames := make(chan []byte, 64)
	unsub := conn.OnMessage(func(raw []byte) {
		cp := make([]byte, len(raw))
		copy(cp, raw)
		select {
		case frames <- cp:
		default:
		}
	})
	defer unsub()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	fmt.Fprintln(os.Stderr, "streaming frames, Ctrl-C to stop")
	for {
		select {
		case raw := <-frames:
			c.printFrame(raw)
		case <-sigs:
			return
		}
	}
}

func (c *ctl) printFrame(raw []byte) {
	env, err := wire.ParseEnvelope(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "malformed frame: %v\n", err)
		return
	}
	frame, err := wire.Classify(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad %s payload: %v\n", env.Type, err)
		return
	}
	if c.json {
		outputJSON(map[string]any{"type": env.Type, "payload": env.Payload})
		return
	}
	ts := time.Now().Format("15:04:05")
	switch f := frame.(type) {
	case wire.FriendListFrame:
		fmt.Printf("%s friend_list: %d chats\n", ts, len(f.Chats))
	case wire.UserProfileFrame:
		fmt.Printf("%s user_profile: %s %s\n", ts, f.Profile.FirstName, f.Profile.LastName)
	case wire.ChatMessageFrame:
		fmt.Printf("%s chat_message: %d -> %d: %s\n", ts, f.Message.From.ID, f.Message.To.ID, f.Message.Message)
	case wire.AllUsersFrame:
		fmt.Printf("%s all_users: %d users\n", ts, len(f.Users))
	case wire.ContactSaveAckFrame:
		fmt.Printf("%s contact ack: ok=%v %s\n", ts, f.Ack.ResponseStatus, f.Ack.Message)
	case wire.UnknownFrame:
		fmt.Printf("%s unknown type %q\n", ts, f.RawType)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
