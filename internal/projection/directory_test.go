package projection

import (
	"reflect"
	"testing"

	"github.com/geekhirusha/chatapp/internal/wire"
)

func rosterUser(id int, first, last, countryCode, contactNo string) map[string]any {
	return map[string]any{
		"id":          id,
		"firstName":   first,
		"lastName":    last,
		"countryCode": countryCode,
		"contactNo":   contactNo,
	}
}

func TestDirectorySnapshotFollowsEveryPush(t *testing.T) {
	f := newFixture()
	p := NewDirectory(signedIn, f.router, f.bus, f.conn, nil)
	p.Start()
	defer p.Stop()

	f.dispatch(t, wire.TypeAllUsers, []any{
		rosterUser(1, "Amal", "Perera", "+94", "711111111"),
		rosterUser(2, "Nimal", "Silva", "+94", "722222222"),
	})
	f.dispatch(t, wire.TypeAllUsers, []any{
		rosterUser(2, "Nimal", "Silva", "+94", "722222222"),
	})

	if rows := p.View(""); len(rows) != 1 || rows[0].ID != 2 {
		t.Errorf("snapshot did not follow latest push: %+v", rows)
	}
}

func TestDirectoryViewFiltersByNameAndPhone(t *testing.T) {
	f := newFixture()
	p := NewDirectory(signedIn, f.router, f.bus, f.conn, nil)
	p.Start()
	defer p.Stop()

	f.dispatch(t, wire.TypeAllUsers, []any{
		rosterUser(1, "Nimal", "Silva", "+94", "722222222"),
		rosterUser(2, "Amal", "Perera", "+94", "711111111"),
		rosterUser(3, "Kasun", "Jay", "+44", "733333333"),
	})

	// Empty filter: everyone, name ascending.
	all := p.View("")
	names := []string{all[0].FirstName, all[1].FirstName, all[2].FirstName}
	if !reflect.DeepEqual(names, []string{"Amal", "Kasun", "Nimal"}) {
		t.Errorf("order = %v", names)
	}

	if rows := p.View("silva"); len(rows) != 1 || rows[0].ID != 1 {
		t.Errorf("name filter = %+v", rows)
	}
	if rows := p.View("7111"); len(rows) != 1 || rows[0].ID != 2 {
		t.Errorf("phone filter = %+v", rows)
	}
	if rows := p.View("+44"); len(rows) != 1 || rows[0].ID != 3 {
		t.Errorf("country code filter = %+v", rows)
	}
}

func TestDirectoryRefreshRequiresSession(t *testing.T) {
	f := newFixture()
	p := NewDirectory(signedOut, f.router, f.bus, f.conn, nil)
	p.Start()
	defer p.Stop()

	p.Refresh()
	f.conn.open()

	if len(f.sender.sent) != 0 {
		t.Errorf("signed-out directory sent %v", f.sender.typesSent())
	}
}

func TestDirectoryRefreshOnConnectivityOpen(t *testing.T) {
	f := newFixture()
	p := NewDirectory(signedIn, f.router, f.bus, f.conn, nil)
	p.Start()
	defer p.Stop()

	f.conn.open()

	if got := f.sender.typesSent(); !reflect.DeepEqual(got, []string{wire.TypeGetAllUsers}) {
		t.Errorf("sent = %v, want [get_all_users]", got)
	}
}
