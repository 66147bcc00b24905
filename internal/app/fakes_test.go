package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fleet_backoffice/internal/domain/notification"
	"fleet_backoffice/internal/domain/trip"
	"fleet_backoffice/internal/domain/vehicle"
	idb "fleet_backoffice/internal/infra/database"

	"gopkg.in/telebot.v3"
)

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles []*vehicle.Vehicle
	listErr  error
	nextID   int64
}

func (f *fakeVehicleRepo) Create(_ context.Context, v *vehicle.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.vehicles {
		if existing.PlateNumber == v.PlateNumber {
			return idb.ErrDuplicatePlate
		}
	}
	f.nextID++
	v.ID = f.nextID
	f.vehicles = append(f.vehicles, v)
	return nil
}

func (f *fakeVehicleRepo) GetByID(_ context.Context, id int64) (*vehicle.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, idb.ErrVehicleNotFound
}

func (f *fakeVehicleRepo) GetByPlate(_ context.Context, plate string) (*vehicle.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.PlateNumber == plate {
			return v, nil
		}
	}
	return nil, idb.ErrVehicleNotFound
}

func (f *fakeVehicleRepo) Update(_ context.Context, v *vehicle.Vehicle) error {
	for i, existing := range f.vehicles {
		if existing.ID == v.ID {
			f.vehicles[i] = v
			return nil
		}
	}
	return idb.ErrVehicleNotFound
}

func (f *fakeVehicleRepo) ListActive(_ context.Context) ([]*vehicle.Vehicle, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*vehicle.Vehicle
	for _, v := range f.vehicles {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out, nil
}

// ListActiveByPlateDigit mimics the SQL prefilter, which compares the last
// character as text.
func (f *fakeVehicleRepo) ListActiveByPlateDigit(ctx context.Context, digit int) ([]*vehicle.Vehicle, error) {
	active, err := f.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	want := fmt.Sprint(digit)
	var out []*vehicle.Vehicle
	for _, v := range active {
		if len(v.PlateNumber) > 0 && v.PlateNumber[len(v.PlateNumber)-1:] == want {
			out = append(out, v)
		}
	}
	return out, nil
}

// fakeNotificationRepo enforces one SCHEDULED run per (fire date, digit) the
// way the partial unique index does.
type fakeNotificationRepo struct {
	mu        sync.Mutex
	runs      []*notification.Run
	createErr error
	finishErr error
	getErr    error
}

func (f *fakeNotificationRepo) CreateRun(_ context.Context, run *notification.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if run.Trigger == notification.TriggerScheduled {
		for _, r := range f.runs {
			if r.Trigger == notification.TriggerScheduled && r.Digit == run.Digit && sameDate(r.FireDate, run.FireDate) {
				return idb.ErrRunAlreadyRecorded
			}
		}
	}
	run.ID = int64(len(f.runs) + 1)
	stored := *run
	f.runs = append(f.runs, &stored)
	return nil
}

func (f *fakeNotificationRepo) FinishRun(_ context.Context, run *notification.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finishErr != nil {
		return f.finishErr
	}
	for _, r := range f.runs {
		if r.RunID == run.RunID {
			r.Status = run.Status
			r.MatchedCount = run.MatchedCount
			r.Error = run.Error
			return nil
		}
	}
	return idb.ErrRunNotFound
}

func (f *fakeNotificationRepo) GetRunByDateAndDigit(_ context.Context, fireDate time.Time, digit notification.Digit) (*notification.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := len(f.runs) - 1; i >= 0; i-- {
		r := f.runs[i]
		if r.Trigger == notification.TriggerScheduled && r.Digit == digit && sameDate(r.FireDate, fireDate) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, idb.ErrRunNotFound
}

func (f *fakeNotificationRepo) ListRuns(_ context.Context, limit int) ([]*notification.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]*notification.Run(nil), f.runs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

type fakeDispatcher struct {
	mu      sync.Mutex
	batches []notification.Batch
	err     error
	delay   time.Duration
}

func (f *fakeDispatcher) Dispatch(_ context.Context, batch notification.Batch) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return f.err
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeTelegramClient struct {
	sent   []sentMessage
	err    error
	failAt int // 1-based send that fails; 0 means use err for every send
}

func (f *fakeTelegramClient) SendMessage(_ context.Context, chatID int64, text string, _ *telebot.SendOptions) error {
	n := len(f.sent) + 1
	if f.err != nil && (f.failAt == 0 || f.failAt == n) {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fakeTripRepo struct {
	trips     map[int64]*trip.Trip
	nextID    int64
	createErr error
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: map[int64]*trip.Trip{}}
}

func (f *fakeTripRepo) Create(_ context.Context, t *trip.Trip) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	t.ID = f.nextID
	stored := *t
	f.trips[t.ID] = &stored
	return nil
}

func (f *fakeTripRepo) GetByID(_ context.Context, id int64) (*trip.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return nil, idb.ErrTripNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTripRepo) Update(_ context.Context, t *trip.Trip) error {
	if _, ok := f.trips[t.ID]; !ok {
		return idb.ErrTripNotFound
	}
	stored := *t
	f.trips[t.ID] = &stored
	return nil
}

func (f *fakeTripRepo) List(_ context.Context, filter trip.ListFilter) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for id := f.nextID; id >= 1; id-- {
		t, ok := f.trips[id]
		if !ok {
			continue
		}
		if filter.PlateNumber != "" && t.PlateNumber != filter.PlateNumber {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
