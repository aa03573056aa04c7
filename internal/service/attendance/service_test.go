package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slotStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type fixture struct {
	store *memStore
	clock *testClock
	svc   attendance.AttendanceService
}

func newFixture() *fixture {
	store := newMemStore()
	clock := &testClock{now: slotStart}
	svc := NewAttendanceService(
		memAttendanceRepo{store},
		memTimeSlotRepo{store},
		memFileRepo{store},
		Config{Now: clock.Now},
	)
	return &fixture{store: store, clock: clock, svc: svc}
}

// initialized returns the attendance of u in a freshly initialized slot.
func (f *fixture) initialized(t *testing.T, users ...user.User) (timeslot.TimeSlot, map[string]attendance.AttendanceResponse) {
	t.Helper()
	slot := f.store.addSlot(slotStart, users...)
	_, err := f.svc.InitializeForTimeSlot(context.Background(), slot.ID)
	require.NoError(t, err)

	list, err := f.svc.ListForTimeSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	byUser := map[string]attendance.AttendanceResponse{}
	for _, a := range list {
		byUser[a.UserID] = a
	}
	return slot, byUser
}

func boolPtr(b bool) *bool { return &b }

func TestInitializeForTimeSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one unmarked attendance per enrolled user", func(t *testing.T) {
		f := newFixture()
		users := []user.User{f.store.addUser("a@x.io"), f.store.addUser("b@x.io"), f.store.addUser("c@x.io")}
		slot := f.store.addSlot(slotStart, users...)

		resp, err := f.svc.InitializeForTimeSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Created)
		assert.Equal(t, slot.ID, resp.TimeSlotID)

		list, err := f.svc.ListForTimeSlot(ctx, slot.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		seen := map[string]bool{}
		for _, a := range list {
			assert.Equal(t, attendance.StateUnmarked, a.State)
			assert.Nil(t, a.IsPresent)
			assert.Nil(t, a.SignFileID)
			assert.Nil(t, a.SignDate)
			require.NotNil(t, a.User)
			seen[a.UserID] = true
		}
		assert.Len(t, seen, 3)
	})

	t.Run("second initialization conflicts regardless of time", func(t *testing.T) {
		f := newFixture()
		slot := f.store.addSlot(slotStart, f.store.addUser("a@x.io"))

		_, err := f.svc.InitializeForTimeSlot(ctx, slot.ID)
		require.NoError(t, err)

		_, err = f.svc.InitializeForTimeSlot(ctx, slot.ID)
		assert.ErrorIs(t, err, attendance.ErrAttendancesAlreadyInitialized)

		f.clock.now = slotStart.Add(24 * time.Hour)
		_, err = f.svc.InitializeForTimeSlot(ctx, slot.ID)
		assert.ErrorIs(t, err, attendance.ErrAttendancesAlreadyInitialized)

		list, err := f.svc.ListForTimeSlot(ctx, slot.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("unknown time slot", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.InitializeForTimeSlot(ctx, uuid.NewString())
		assert.ErrorIs(t, err, timeslot.ErrTimeSlotNotFound)
	})
}

func TestInitializeForTimeSlot_SigningWindow(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"before the slot starts", slotStart.Add(-time.Hour), nil},
		{"at start", slotStart, nil},
		{"exactly at the end of the grace window", slotStart.Add(10 * time.Minute), nil},
		{"one second past the grace window", slotStart.Add(10*time.Minute + time.Second), attendance.ErrSigningWindowClosed},
		{"a day later", slotStart.Add(24 * time.Hour), attendance.ErrSigningWindowClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.clock.now = tt.now
			slot := f.store.addSlot(slotStart, f.store.addUser("a@x.io"))

			_, err := f.svc.InitializeForTimeSlot(context.Background(), slot.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				exists, _ := memAttendanceRepo{f.store}.ExistsForTimeSlot(context.Background(), slot.ID)
				assert.False(t, exists)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInitializeForTimeSlot_CustomGrace(t *testing.T) {
	store := newMemStore()
	clock := &testClock{now: slotStart.Add(20 * time.Minute)}
	svc := NewAttendanceService(memAttendanceRepo{store}, memTimeSlotRepo{store}, memFileRepo{store}, Config{
		SigningGrace: 30 * time.Minute,
		Now:          clock.Now,
	})
	slot := store.addSlot(slotStart, store.addUser("a@x.io"))

	_, err := svc.InitializeForTimeSlot(context.Background(), slot.ID)
	assert.NoError(t, err)
}

func TestSign(t *testing.T) {
	ctx := context.Background()

	t.Run("sign then sign again conflicts", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, byUser := f.initialized(t, alice)
		sig := f.store.addFile(alice)
		id := byUser[alice.ID].ID

		f.clock.now = slotStart.Add(3 * time.Minute)
		signed, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)
		assert.Equal(t, attendance.StateSigned, signed.State)
		require.NotNil(t, signed.SignFile)
		assert.Equal(t, sig.ID, signed.SignFile.ID)

		_, err = f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: f.store.addFile(alice).ID})
		assert.ErrorIs(t, err, attendance.ErrAlreadySigned)
	})

	t.Run("get by id after sign", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, byUser := f.initialized(t, alice)
		sig := f.store.addFile(alice)
		id := byUser[alice.ID].ID

		f.clock.now = slotStart.Add(4 * time.Minute)
		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)

		got, err := f.svc.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got.IsPresent)
		assert.True(t, *got.IsPresent)
		require.NotNil(t, got.SignFileID)
		assert.Equal(t, sig.ID, *got.SignFileID)
		require.NotNil(t, got.SignDate)
		assert.True(t, got.SignDate.Equal(slotStart.Add(4*time.Minute)))
		require.NotNil(t, got.SignFile)
	})

	t.Run("absent user cannot sign whatever the file", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, byUser := f.initialized(t, alice)
		id := byUser[alice.ID].ID

		_, err := f.svc.SetPresence(ctx, attendance.SetPresenceRequest{AttendanceID: id, IsPresent: boolPtr(false)})
		require.NoError(t, err)

		for _, fileID := range []string{f.store.addFile(alice).ID, uuid.NewString()} {
			_, err = f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: fileID})
			assert.ErrorIs(t, err, attendance.ErrAbsentCannotSign)
		}
	})

	t.Run("same user cannot reuse a file on another attendance", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, first := f.initialized(t, alice)
		_, second := f.initialized(t, alice)
		sig := f.store.addFile(alice)

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: first[alice.ID].ID, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)

		_, err = f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: second[alice.ID].ID, UserID: alice.ID, SignFileID: sig.ID})
		assert.ErrorIs(t, err, attendance.ErrSignFileAlreadyUsed)
	})

	t.Run("another user may use the same file", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		bob := f.store.addUser("bob@x.io")
		_, byUser := f.initialized(t, alice, bob)
		sig := f.store.addFile(alice)

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: byUser[alice.ID].ID, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)

		_, err = f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: byUser[bob.ID].ID, UserID: bob.ID, SignFileID: sig.ID})
		assert.NoError(t, err)
	})

	t.Run("only the owner can sign", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		bob := f.store.addUser("bob@x.io")
		_, byUser := f.initialized(t, alice, bob)

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: byUser[alice.ID].ID, UserID: bob.ID, SignFileID: f.store.addFile(bob).ID})
		assert.ErrorIs(t, err, attendance.ErrNotAttendanceOwner)
	})

	t.Run("missing sign file", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, byUser := f.initialized(t, alice)

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: byUser[alice.ID].ID, UserID: alice.ID, SignFileID: uuid.NewString()})
		assert.ErrorIs(t, err, attendance.ErrSignFileNotFound)
	})

	t.Run("missing attendance", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: uuid.NewString(), UserID: alice.ID, SignFileID: uuid.NewString()})
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})

	t.Run("invalid request", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: "nope", UserID: "u"})
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Len(t, verrs, 2)
	})
}

func TestSign_LostRace(t *testing.T) {
	f := newFixture()
	alice := f.store.addUser("alice@x.io")
	_, byUser := f.initialized(t, alice)
	sig := f.store.addFile(alice)

	svc := NewAttendanceService(racingRepo{memAttendanceRepo{f.store}}, memTimeSlotRepo{f.store}, memFileRepo{f.store}, Config{Now: f.clock.Now})

	_, err := svc.Sign(context.Background(), attendance.SignRequest{AttendanceID: byUser[alice.ID].ID, UserID: alice.ID, SignFileID: sig.ID})
	assert.ErrorIs(t, err, attendance.ErrAlreadySigned)
}

// racingRepo simulates a concurrent sign committing between the checks and the write.
type racingRepo struct{ memAttendanceRepo }

func (r racingRepo) Sign(ctx context.Context, id string, signFileID string, signedAt time.Time) (attendance.Attendance, error) {
	other := uuid.NewString()
	if _, err := r.memAttendanceRepo.Sign(ctx, id, other, signedAt); err != nil {
		return attendance.Attendance{}, err
	}
	return r.memAttendanceRepo.Sign(ctx, id, signFileID, signedAt)
}

func TestSetPresence(t *testing.T) {
	ctx := context.Background()

	t.Run("absent after sign clears the signature and reopens signing", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, byUser := f.initialized(t, alice)
		sig := f.store.addFile(alice)
		id := byUser[alice.ID].ID

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)

		absent, err := f.svc.SetPresence(ctx, attendance.SetPresenceRequest{AttendanceID: id, IsPresent: boolPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, attendance.StateAbsent, absent.State)
		assert.Nil(t, absent.SignFileID)
		assert.Nil(t, absent.SignDate)

		present, err := f.svc.SetPresence(ctx, attendance.SetPresenceRequest{AttendanceID: id, IsPresent: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, attendance.StatePresentUnsigned, present.State)

		resigned, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)
		assert.Equal(t, attendance.StateSigned, resigned.State)
	})

	t.Run("present keeps an existing signature", func(t *testing.T) {
		f := newFixture()
		alice := f.store.addUser("alice@x.io")
		_, byUser := f.initialized(t, alice)
		sig := f.store.addFile(alice)
		id := byUser[alice.ID].ID

		_, err := f.svc.Sign(ctx, attendance.SignRequest{AttendanceID: id, UserID: alice.ID, SignFileID: sig.ID})
		require.NoError(t, err)

		got, err := f.svc.SetPresence(ctx, attendance.SetPresenceRequest{AttendanceID: id, IsPresent: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, attendance.StateSigned, got.State)
		require.NotNil(t, got.SignFileID)
	})

	t.Run("unknown attendance", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.SetPresence(ctx, attendance.SetPresenceRequest{AttendanceID: uuid.NewString(), IsPresent: boolPtr(true)})
		assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	})

	t.Run("missing flag", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.SetPresence(ctx, attendance.SetPresenceRequest{AttendanceID: uuid.NewString()})
		var verrs validator.ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.store.addUser("alice@x.io")
	bob := f.store.addUser("bob@x.io")
	f.initialized(t, alice, bob)
	f.initialized(t, alice)

	list, err := f.svc.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, alice.ID, a.UserID)
	}

	none, err := f.svc.ListForUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListForTimeSlot_UnknownSlot(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ListForTimeSlot(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, timeslot.ErrTimeSlotNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

var _ file.FileRepository = memFileRepo{}
