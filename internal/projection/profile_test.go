package projection

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/geekhirusha/chatapp/internal/upload"
	"github.com/geekhirusha/chatapp/internal/wire"
)

// fakeUploader returns a canned result without touching the network.
type fakeUploader struct {
	result *upload.Result
	err    error

	gotUserID int
	gotPath   string
}

func (u *fakeUploader) ProfileImage(_ context.Context, userID int, imagePath string) (*upload.Result, error) {
	u.gotUserID = userID
	u.gotPath = imagePath
	return u.result, u.err
}

func TestProfileSnapshotReplacedWholesale(t *testing.T) {
	f := newFixture()
	p := NewProfile(signedIn, f.router, f.bus, f.conn, &fakeUploader{}, nil)
	p.Start()
	defer p.Stop()

	f.dispatch(t, wire.TypeUserProfile, map[string]any{"id": 7, "firstName": "Hirusha", "profileImage": "profile-images/7/a.png"})
	f.dispatch(t, wire.TypeUserProfile, map[string]any{"id": 7, "firstName": "Hirusha"})

	u := p.User()
	if u == nil || u.ProfileImage != "" {
		// The second push omitted the image; the snapshot must not keep
		// the stale value from the first.
		t.Errorf("user = %+v, want image cleared by second push", u)
	}
}

func TestProfileRefreshSendsFetchVerb(t *testing.T) {
	f := newFixture()
	p := NewProfile(signedIn, f.router, f.bus, f.conn, &fakeUploader{}, nil)
	p.Start()
	defer p.Stop()

	p.Refresh()

	if got := f.sender.typesSent(); !reflect.DeepEqual(got, []string{wire.TypeSetUserProfile}) {
		t.Errorf("sent = %v, want [set_user_profile]", got)
	}
}

func TestProfileUploadSuccessRefreshesAllViews(t *testing.T) {
	f := newFixture()
	up := &fakeUploader{result: &upload.Result{Status: true, ImagePath: "profile-images/7/b.png"}}
	p := NewProfile(signedIn, f.router, f.bus, f.conn, up, nil)
	p.Start()
	defer p.Stop()

	result, err := p.UploadImage(context.Background(), "/tmp/b.png")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Status {
		t.Fatal("expected accepted upload")
	}
	if up.gotUserID != 7 || up.gotPath != "/tmp/b.png" {
		t.Errorf("uploader called with userID=%d path=%q", up.gotUserID, up.gotPath)
	}

	want := []string{wire.TypeSetUserProfile, wire.TypeGetChatList, wire.TypeGetAllUsers}
	if got := f.sender.typesSent(); !reflect.DeepEqual(got, want) {
		t.Errorf("sent = %v, want %v", got, want)
	}
}

func TestProfileUploadRejectionSendsNothing(t *testing.T) {
	f := newFixture()
	up := &fakeUploader{result: &upload.Result{Status: false, Message: "too large"}}
	p := NewProfile(signedIn, f.router, f.bus, f.conn, up, nil)
	p.Start()
	defer p.Stop()

	result, err := p.UploadImage(context.Background(), "/tmp/b.png")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status {
		t.Fatal("expected rejected upload")
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("rejected upload still sent %v", f.sender.typesSent())
	}
}

func TestProfileUploadTransportErrorSendsNothing(t *testing.T) {
	f := newFixture()
	up := &fakeUploader{err: errors.New("connection refused")}
	p := NewProfile(signedIn, f.router, f.bus, f.conn, up, nil)
	p.Start()
	defer p.Stop()

	if _, err := p.UploadImage(context.Background(), "/tmp/b.png"); err == nil {
		t.Fatal("expected transport error")
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("failed upload still sent %v", f.sender.typesSent())
	}
}

func TestProfileUploadRequiresSession(t *testing.T) {
	f := newFixture()
	p := NewProfile(signedOut, f.router, f.bus, f.conn, &fakeUploader{}, nil)

	if _, err := p.UploadImage(context.Background(), "/tmp/b.png"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("err = %v, want ErrNotSignedIn", err)
	}
}
