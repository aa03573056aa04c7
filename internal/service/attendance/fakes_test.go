package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

// memStore mirrors the table constraints the postgres repositories rely on.
type memStore struct {
	mu          sync.Mutex
	attendances map[string]attendance.Attendance
	order       []string
	slots       map[string]timeslot.TimeSlot
	files       map[string]file.File
	users       map[string]user.User
}

func newMemStore() *memStore {
	return &memStore{
		attendances: map[string]attendance.Attendance{},
		slots:       map[string]timeslot.TimeSlot{},
		files:       map[string]file.File{},
		users:       map[string]user.User{},
	}
}

func (m *memStore) addUser(email string) user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user.User{ID: uuid.NewString(), Email: email, FirstName: email, Role: user.RoleMember}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addSlot(start time.Time, users ...user.User) timeslot.TimeSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	group := &timeslot.Group{ID: uuid.NewString(), Name: "group", Users: users}
	slot := timeslot.TimeSlot{ID: uuid.NewString(), GroupID: group.ID, StartDate: start, Group: group}
	m.slots[slot.ID] = slot
	return slot
}

func (m *memStore) addFile(owner user.User) file.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := file.File{ID: uuid.NewString(), OwnerID: owner.ID, Path: "signatures/x.png", OriginalName: "x.png", MimeType: "image/png"}
	m.files[f.ID] = f
	return f
}

// ---- attendance.AttendanceRepository ----

type memAttendanceRepo struct{ *memStore }

func (r memAttendanceRepo) populate(a attendance.Attendance, opts attendance.FindOptions) attendance.Attendance {
	if opts.PopulateUser {
		if u, ok := r.users[a.UserID]; ok {
			a.User = &u
		}
	}
	if opts.PopulateSignFile && a.SignFileID != nil {
		if f, ok := r.files[*a.SignFileID]; ok {
			a.SignFile = &f
		}
	}
	return a
}

func (r memAttendanceRepo) FindManyBy(ctx context.Context, filter attendance.Filter, opts attendance.FindOptions) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]attendance.Attendance, 0)
	for _, id := range r.order {
		a := r.attendances[id]
		if filter.TimeSlotID != nil && a.TimeSlotID != *filter.TimeSlotID {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		out = append(out, r.populate(a, opts))
	}
	return out, nil
}

func (r memAttendanceRepo) FindOneByID(ctx context.Context, id string, opts attendance.FindOptions) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r.populate(a, opts), nil
}

func (r memAttendanceRepo) ExistsForTimeSlot(ctx context.Context, timeSlotID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendances {
		if a.TimeSlotID == timeSlotID {
			return true, nil
		}
	}
	return false, nil
}

func (r memAttendanceRepo) CreateMany(ctx context.Context, rows []attendance.Attendance) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	for _, a := range r.attendances {
		seen[a.TimeSlotID+"/"+a.UserID] = true
	}
	for _, a := range rows {
		key := a.TimeSlotID + "/" + a.UserID
		if seen[key] {
			return nil, attendance.ErrAttendancesAlreadyInitialized
		}
		seen[key] = true
	}

	created := make([]attendance.Attendance, 0, len(rows))
	for _, a := range rows {
		a.ID = uuid.NewString()
		a.CreatedAt = time.Now()
		a.UpdatedAt = a.CreatedAt
		r.attendances[a.ID] = a
		r.order = append(r.order, a.ID)
		created = append(created, a)
	}
	return created, nil
}

func (r memAttendanceRepo) UpdatePresence(ctx context.Context, id string, isPresent bool) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.IsPresent = &isPresent
	if !isPresent {
		a.SignFileID = nil
		a.SignDate = nil
	}
	r.attendances[id] = a
	return a, nil
}

func (r memAttendanceRepo) Sign(ctx context.Context, id string, signFileID string, signedAt time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if a.IsSigned() {
		return attendance.Attendance{}, attendance.ErrAlreadySigned
	}
	if a.IsMarkedAbsent() {
		return attendance.Attendance{}, attendance.ErrAbsentCannotSign
	}
	for _, other := range r.attendances {
		if other.UserID == a.UserID && other.IsSigned() && *other.SignFileID == signFileID {
			return attendance.Attendance{}, attendance.ErrSignFileAlreadyUsed
		}
	}
	present := true
	a.IsPresent = &present
	a.SignFileID = &signFileID
	a.SignDate = &signedAt
	r.attendances[id] = a
	return a, nil
}

func (r memAttendanceRepo) IsSignFileAlreadyUsedForSign(ctx context.Context, userID string, signFileID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendances {
		if a.UserID == userID && a.IsSigned() && *a.SignFileID == signFileID {
			return true, nil
		}
	}
	return false, nil
}

// ---- timeslot.TimeSlotRepository ----

type memTimeSlotRepo struct{ *memStore }

func (r memTimeSlotRepo) Create(ctx context.Context, slot timeslot.TimeSlot) (timeslot.TimeSlot, error) {
	return slot, nil
}

func (r memTimeSlotRepo) GetByID(ctx context.Context, id string) (timeslot.TimeSlot, error) {
	slot, err := r.GetWithGroupUsers(ctx, id)
	slot.Group = nil
	return slot, err
}

func (r memTimeSlotRepo) GetWithGroupUsers(ctx context.Context, id string) (timeslot.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return timeslot.TimeSlot{}, timeslot.ErrTimeSlotNotFound
	}
	return slot, nil
}

func (r memTimeSlotRepo) List(ctx context.Context, filter timeslot.TimeSlotFilter) ([]timeslot.TimeSlot, error) {
	return nil, nil
}

// ---- file.FileRepository ----

type memFileRepo struct{ *memStore }

func (r memFileRepo) Create(ctx context.Context, f file.File) (file.File, error) {
	return f, nil
}

func (r memFileRepo) FindOneByID(ctx context.Context, id string) (file.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return file.File{}, file.ErrFileNotFound
	}
	return f, nil
}
