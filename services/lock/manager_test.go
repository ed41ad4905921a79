package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	slotRepo "medibook/database/repository/slot"
	"medibook/models"

	"go.uber.org/zap"
)

// memSlotRepo is an in-memory SlotRepository with the same check-and-set
// semantics as the Mongo implementation: every mutation checks and writes
// slot status under one mutex hold.
type memSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.Slot
}

func newMemSlotRepo(slots ...*models.Slot) *memSlotRepo {
	m := &memSlotRepo{slots: make(map[string]*models.Slot)}
	for _, s := range slots {
		m.slots[s.ID] = s
	}
	return m
}

func (m *memSlotRepo) Insert(ctx context.Context, slot *models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot.ID] = slot
	return nil
}

func (m *memSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSlotRepo) GetByLockID(ctx context.Context, lockID string) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.Lock != nil && s.Lock.LockID == lockID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, slotRepo.ErrSlotNotFound
}

func (m *memSlotRepo) ListByDoctor(ctx context.Context, doctorID string) ([]models.Slot, error) {
	return nil, nil
}

func (m *memSlotRepo) AcquireLock(ctx context.Context, slotID string, lock *models.SlotLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if s.Status != models.SlotStatusAvailable {
		return slotRepo.ErrSlotUnavailable
	}
	s.Status = models.SlotStatusLocked
	cp := *lock
	s.Lock = &cp
	return nil
}

func (m *memSlotRepo) ReleaseLock(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.Status == models.SlotStatusLocked && s.Lock != nil && s.Lock.LockID == lockID {
			s.Status = models.SlotStatusAvailable
			s.Lock = nil
		}
	}
	return nil
}

func (m *memSlotRepo) ReclaimExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.slots {
		if s.Status == models.SlotStatusLocked && s.Lock != nil && s.Lock.ExpiredAt(now) {
			s.Status = models.SlotStatusAvailable
			s.Lock = nil
			n++
		}
	}
	return n, nil
}

func (m *memSlotRepo) CommitBooking(ctx context.Context, lockID string, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[appt.SlotID]
	if !ok || s.Status != models.SlotStatusLocked || s.Lock == nil || s.Lock.LockID != lockID {
		return slotRepo.ErrBookingConflict
	}
	s.Status = models.SlotStatusBooked
	s.Lock = nil
	return nil
}

func (m *memSlotRepo) EnsureIndexes() error { return nil }

func availableSlot(id string) *models.Slot {
	return &models.Slot{
		ID:        id,
		DoctorID:  "doc-1",
		Day:       "2026-09-01",
		StartTime: "09:00",
		EndTime:   "09:30",
		Status:    models.SlotStatusAvailable,
	}
}

func TestAcquire_ExactlyOneWinner(t *testing.T) {
	repo := newMemSlotRepo(availableSlot("s1"))
	mgr := NewDefaultLockManager(repo, 5*time.Minute, zap.NewNop())

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, conflicts int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := mgr.Acquire(context.Background(), "s1", "patient-"+string(rune('a'+n%26)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, slotRepo.ErrSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful acquire, got %d", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestAcquire_SlotNotFound(t *testing.T) {
	repo := newMemSlotRepo()
	mgr := NewDefaultLockManager(repo, 5*time.Minute, zap.NewNop())

	if _, err := mgr.Acquire(context.Background(), "missing", "p1"); !errors.Is(err, slotRepo.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestAcquire_SetsHoldExpiry(t *testing.T) {
	repo := newMemSlotRepo(availableSlot("s1"))
	hold := 5 * time.Minute
	mgr := NewDefaultLockManager(repo, hold, zap.NewNop())

	before := time.Now()
	lk, err := mgr.Acquire(context.Background(), "s1", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lk.LockID == "" {
		t.Error("expected a lock identifier")
	}
	wantMin := before.Add(hold)
	if lk.ExpiresAt.Before(wantMin) || lk.ExpiresAt.After(time.Now().Add(hold)) {
		t.Errorf("expiry %v outside expected hold window", lk.ExpiresAt)
	}
}

func TestRelease_ReturnsSlotAndIsIdempotent(t *testing.T) {
	repo := newMemSlotRepo(availableSlot("s1"))
	mgr := NewDefaultLockManager(repo, 5*time.Minute, zap.NewNop())

	lk, err := mgr.Acquire(context.Background(), "s1", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := mgr.Release(context.Background(), lk.LockID); err != nil {
			t.Fatalf("release %d: unexpected error: %v", i, err)
		}
	}

	// The slot is available again, so a second holder can take it.
	if _, err := mgr.Acquire(context.Background(), "s1", "p2"); err != nil {
		t.Fatalf("expected re-acquire to succeed, got %v", err)
	}
}

func TestRelease_DoesNotDisturbSupersedingLock(t *testing.T) {
	repo := newMemSlotRepo(availableSlot("s1"))
	mgr := NewDefaultLockManager(repo, 5*time.Minute, zap.NewNop())

	first, err := mgr.Acquire(context.Background(), "s1", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mgr.Release(context.Background(), first.LockID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := mgr.Acquire(context.Background(), "s1", "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Releasing the consumed first lock again must not touch p2's hold.
	if err := mgr.Release(context.Background(), first.LockID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slot, err := repo.GetByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.Status != models.SlotStatusLocked || slot.Lock == nil || slot.Lock.LockID != second.LockID {
		t.Fatalf("second lock was disturbed: status=%s", slot.Status)
	}
}

func TestExpireStale_ReclaimsLapsedHolds(t *testing.T) {
	repo := newMemSlotRepo(availableSlot("s1"), availableSlot("s2"))
	mgr := NewDefaultLockManager(repo, 5*time.Minute, zap.NewNop())

	if _, err := mgr.Acquire(context.Background(), "s1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	live, err := mgr.Acquire(context.Background(), "s2", "p2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Force s1's hold into the past; s2 stays live.
	repo.mu.Lock()
	repo.slots["s1"].Lock.ExpiresAt = time.Now().Add(-time.Second)
	repo.mu.Unlock()

	reclaimed, err := mgr.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("expected 1 reclaimed hold, got %d", reclaimed)
	}

	// s1 is bookable again; s2's hold survived.
	if _, err := mgr.Acquire(context.Background(), "s1", "p3"); err != nil {
		t.Fatalf("expected re-acquire after sweep to succeed, got %v", err)
	}
	slot2, err := repo.GetByID(context.Background(), "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot2.Lock == nil || slot2.Lock.LockID != live.LockID {
		t.Fatal("live hold was reclaimed by the sweep")
	}
}

func TestAcquire_ValidatesInput(t *testing.T) {
	mgr := NewDefaultLockManager(newMemSlotRepo(), 5*time.Minute, zap.NewNop())
	if _, err := mgr.Acquire(context.Background(), "", "p1"); err == nil {
		t.Error("expected error for missing slot id")
	}
	if _, err := mgr.Acquire(context.Background(), "s1", ""); err == nil {
		t.Error("expected error for missing holder id")
	}
	if err := mgr.Release(context.Background(), ""); err == nil {
		t.Error("expected error for missing lock id")
	}
}
