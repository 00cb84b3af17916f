package core

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/JonMunkholm/leavetrack/internal/session"
	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	svc := NewService(Config{
		Upload: UploadSettings{
			Options:           upload.Options{MaxSizeMB: 5, AcceptedTypes: []string{"image/png", "image/gif"}},
			SimulatedDuration: 200 * time.Millisecond,
			TickInterval:      50 * time.Millisecond,
			MaxConcurrent:     2,
			MaxWaitTime:       20 * time.Millisecond,
		},
		Clock: fc,
	})
	return svc, fc
}

// waiters blocks until n timers or tickers are registered with fc.
func waiters(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, n))
}

// runUpload advances fc until the uploader's simulation has finished. A
// fake ticker drops ticks nobody has read yet, so it keeps advancing rather
// than counting steps.
func runUpload(t *testing.T, svc *Service, fc *clockwork.FakeClock, id string) {
	t.Helper()
	waiters(t, fc, 1)
	require.Eventually(t, func() bool {
		fc.Advance(svc.sim.Interval())
		st, err := svc.UploaderStatus(id)
		return err == nil && st.State == upload.StateComplete
	}, 2*time.Second, time.Millisecond)
}

func TestService_UploadAddsToGallery(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateUploader(ctx)
	require.NoError(t, err)
	require.Equal(t, upload.StateIdle, info.Status.State)
	require.Equal(t, []string{"image/png", "image/gif"}, info.AcceptedTypes)
	require.EqualValues(t, 5, info.MaxSizeMB)

	f := upload.NewFile("photo.png", "image/png", []byte("png-bytes"))
	require.NoError(t, svc.SelectFile(ctx, info.ID, f))

	runUpload(t, svc, fc, info.ID)

	require.Eventually(t, func() bool {
		recs, err := svc.ListGallery(ctx)
		return err == nil && len(recs) == 1
	}, 2*time.Second, time.Millisecond)

	recs, err := svc.ListGallery(ctx)
	require.NoError(t, err)
	require.Equal(t, "photo.png", recs[0].Name)
	require.EqualValues(t, len("png-bytes"), recs[0].Size)
	require.Equal(t, upload.EncodeDataURI("image/png", []byte("png-bytes")), recs[0].SourceURI)

	sel, err := svc.SelectImage(ctx, recs[0].ID)
	require.NoError(t, err)
	require.Equal(t, "Selected image: photo.png", sel.Message)

	require.NoError(t, svc.ClearGallery(ctx))
	recs, err = svc.ListGallery(ctx)
	require.NoError(t, err)
	require.Empty(t, recs)

	require.Zero(t, svc.ActiveUploadCount())
}

func TestService_RejectedFileChangesNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateUploader(ctx)
	require.NoError(t, err)

	err = svc.SelectFile(ctx, info.ID, upload.NewFile("doc.pdf", "application/pdf", []byte("%PDF")))
	var verr *upload.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, upload.UnsupportedType, verr.Reason)

	st, err := svc.UploaderStatus(info.ID)
	require.NoError(t, err)
	require.Equal(t, upload.StateIdle, st.State)
}

func TestService_UnknownUploader(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UploaderStatus("nope")
	require.ErrorIs(t, err, ErrUploaderNotFound)
	require.ErrorIs(t, svc.ResetUploader("nope"), ErrUploaderNotFound)
	_, _, err = svc.SubscribeUploader("nope")
	require.ErrorIs(t, err, ErrUploaderNotFound)
	require.ErrorIs(t, svc.RemoveUploader("nope"), ErrUploaderNotFound)
}

func TestService_ResetAndSubscribe(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateUploader(ctx)
	require.NoError(t, err)

	events, unsubscribe, err := svc.SubscribeUploader(info.ID)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, svc.SelectFile(ctx, info.ID, upload.NewFile("a.gif", "image/gif", []byte("GIF89a"))))
	waiters(t, fc, 1)
	require.Equal(t, 1, svc.ActiveUploadCount())

	require.NoError(t, svc.ResetUploader(info.ID))
	require.Zero(t, svc.ActiveUploadCount())

	var last upload.Event
	for {
		select {
		case ev := <-events:
			last = ev
			continue
		default:
		}
		break
	}
	require.Equal(t, upload.EventState, last.Type)
	require.Equal(t, upload.StateIdle, last.State)
}

func TestService_SweepIdleUploaders(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()

	idle, err := svc.CreateUploader(ctx)
	require.NoError(t, err)
	busy, err := svc.CreateUploader(ctx)
	require.NoError(t, err)

	fc.Advance(time.Hour)
	require.NoError(t, svc.SelectFile(ctx, busy.ID, upload.NewFile("a.png", "image/png", []byte("x"))))
	fc.Advance(time.Hour)

	require.Equal(t, 1, svc.SweepIdleUploaders(30*time.Minute))
	require.Equal(t, 1, svc.UploaderCount())

	_, err = svc.UploaderStatus(idle.ID)
	require.ErrorIs(t, err, ErrUploaderNotFound)
	_, err = svc.UploaderStatus(busy.ID)
	require.NoError(t, err, "active uploaders are never evicted")
}

func TestService_Janitor(t *testing.T) {
	svc, fc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := svc.CreateUploader(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		svc.StartJanitor(ctx, JanitorConfig{IdleTTL: time.Minute, CheckInterval: 30 * time.Second})
		close(done)
	}()

	waiters(t, fc, 1)
	fc.Advance(2 * time.Minute)

	require.Eventually(t, func() bool { return svc.UploaderCount() == 0 }, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestService_WaitForUploads(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateUploader(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SelectFile(ctx, info.ID, upload.NewFile("a.png", "image/png", []byte("x"))))

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, svc.WaitForUploads(short), context.DeadlineExceeded)

	runUpload(t, svc, fc, info.ID)
	require.NoError(t, svc.WaitForUploads(ctx))
}

// slowGallery blocks Add until release is closed.
type slowGallery struct {
	*gallery.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (g *slowGallery) Add(ctx context.Context, img gallery.Image) (gallery.Record, error) {
	close(g.entered)
	<-g.release
	return g.MemoryStore.Add(ctx, img)
}

func TestService_WaitForUploadsIncludesGalleryWrite(t *testing.T) {
	fc := clockwork.NewFakeClock()
	store := &slowGallery{
		MemoryStore: gallery.NewMemoryStore(fc),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := NewService(Config{
		Upload: UploadSettings{
			Options:           upload.Options{MaxSizeMB: 5, AcceptedTypes: []string{"image/png"}},
			SimulatedDuration: 200 * time.Millisecond,
			TickInterval:      50 * time.Millisecond,
			MaxConcurrent:     2,
			MaxWaitTime:       20 * time.Millisecond,
		},
		Gallery: store,
		Clock:   fc,
	})
	ctx := context.Background()

	info, err := svc.CreateUploader(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SelectFile(ctx, info.ID, upload.NewFile("a.png", "image/png", []byte("x"))))
	runUpload(t, svc, fc, info.ID)

	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("gallery add never started")
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, svc.WaitForUploads(short), context.DeadlineExceeded)

	close(store.release)
	require.NoError(t, svc.WaitForUploads(ctx))

	recs, err := store.MemoryStore.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "a.png", recs[0].Name)
}

func signup(t *testing.T, svc *Service, fc *clockwork.FakeClock, sess *session.Session, req SignupRequest) (session.User, error) {
	t.Helper()
	type result struct {
		u   session.User
		err error
	}
	out := make(chan result, 1)
	go func() {
		u, err := svc.Signup(context.Background(), sess, req)
		out <- result{u, err}
	}()

	waiters(t, fc, 1)
	fc.Advance(DefaultSignupDelay)

	select {
	case r := <-out:
		return r.u, r.err
	case <-time.After(2 * time.Second):
		t.Fatal("signup did not return")
		return session.User{}, nil
	}
}

func TestService_Signup(t *testing.T) {
	svc, fc := newTestService(t)
	sess := session.New(svc.Sessions(), session.NewID())

	u, err := signup(t, svc, fc, sess, SignupRequest{
		Name: "Jane", Email: "jane@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	require.NoError(t, err)
	require.Equal(t, session.User{Name: "Jane", Email: "jane@example.com", IsLoggedIn: true}, u)
	require.True(t, sess.Authenticated(context.Background()))

	me, err := svc.CurrentUser(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, "Jane", me.Name)
}

func TestService_SignupPasswordMismatchIsImmediate(t *testing.T) {
	svc, _ := newTestService(t)
	sess := session.New(svc.Sessions(), session.NewID())

	_, err := svc.Signup(context.Background(), sess, SignupRequest{
		Name: "Jane", Email: "jane@example.com", Password: "a", ConfirmPassword: "b",
	})
	require.ErrorIs(t, err, ErrPasswordMismatch)
	require.False(t, sess.Authenticated(context.Background()))
}

func TestService_SignupMissingFieldsAfterDelay(t *testing.T) {
	svc, fc := newTestService(t)
	sess := session.New(svc.Sessions(), session.NewID())

	_, err := signup(t, svc, fc, sess, SignupRequest{Email: "jane@example.com", Password: "pw", ConfirmPassword: "pw"})
	require.ErrorIs(t, err, ErrMissingFields)
	require.False(t, sess.Authenticated(context.Background()))
}

func TestService_SignupCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	sess := session.New(svc.Sessions(), session.NewID())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Signup(ctx, sess, SignupRequest{Name: "a", Email: "b", Password: "c", ConfirmPassword: "c"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_LoginAndLogout(t *testing.T) {
	svc, fc := newTestService(t)
	ctx := context.Background()
	sess := session.New(svc.Sessions(), session.NewID())

	_, err := svc.Login(ctx, sess, LoginRequest{Email: "alex@example.com"})
	require.ErrorIs(t, err, ErrMissingFields)

	out := make(chan session.User, 1)
	go func() {
		u, err := svc.Login(ctx, sess, LoginRequest{Email: "alex@example.com", Password: "pw"})
		if err == nil {
			out <- u
		}
		close(out)
	}()
	waiters(t, fc, 1)
	fc.Advance(DefaultSignupDelay)

	u, ok := <-out
	require.True(t, ok, "login failed")
	require.Equal(t, "alex", u.Name)

	require.NoError(t, svc.Logout(ctx, sess))
	_, err = svc.CurrentUser(ctx, sess)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestService_Leave(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reqs, err := svc.LeaveRequests("pending")
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	_, err = svc.LeaveRequests("bogus")
	require.Error(t, err)

	require.Len(t, svc.LeaveDashboard().Balances, 3)

	receipt, err := svc.SubmitLeave(ctx, LeaveForm{StartDate: "2024-03-04", EndDate: "2024-03-08"})
	require.NoError(t, err)
	require.Equal(t, 5, receipt.Days)
	require.Equal(t, "Leave request submitted for 5 days", receipt.Message)

	_, err = svc.SubmitLeave(ctx, LeaveForm{StartDate: "2024-03-04"})
	require.Equal(t, "LEAVE001", MapError(err).Code)

	_, err = svc.SubmitLeave(ctx, LeaveForm{StartDate: "2024-03-08", EndDate: "2024-03-04"})
	require.Equal(t, "LEAVE002", MapError(err).Code)

	_, err = svc.SubmitLeave(ctx, LeaveForm{StartDate: "04/03/2024", EndDate: "2024-03-04"})
	require.Equal(t, "LEAVE005", MapError(err).Code)

	_, err = svc.SubmitLeave(ctx, LeaveForm{Type: "sabbatical", StartDate: "2024-03-04", EndDate: "2024-03-04"})
	require.Equal(t, "LEAVE004", MapError(err).Code)
}

func TestService_SendContact(t *testing.T) {
	svc, _ := newTestService(t)

	msg, err := svc.SendContact(context.Background(), ContactMessage{Name: "A", Email: "a@b.c", Message: "hi"})
	require.NoError(t, err)
	require.Equal(t, MsgContactSent, msg)

	_, err = svc.SendContact(context.Background(), ContactMessage{Name: "A"})
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestRequestMeta(t *testing.T) {
	require.Equal(t, RequestMeta{}, RequestMetaFrom(context.Background()))

	ctx := WithRequestMeta(context.Background(), RequestMeta{IP: "10.0.0.1", UserAgent: "curl"})
	require.Equal(t, "10.0.0.1", RequestMetaFrom(ctx).IP)
	require.Equal(t, []any{"ip", "10.0.0.1", "user_agent", "curl"}, RequestMetaFrom(ctx).logArgs())
}
