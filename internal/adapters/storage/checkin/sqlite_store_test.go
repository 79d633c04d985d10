package checkin

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary/internal/adapters/storage"
	domain "sanctuary/internal/domain/checkin"
	"sanctuary/internal/domain/eventsession"
	"sanctuary/internal/domain/failure"
)

func openStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	return openStoreAt(t, storage.MemoryPath)
}

func openStoreAt(t *testing.T, path string) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := storage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db), db
}

func seedActiveSession(t *testing.T, db *sql.DB, code string) {
	t.Helper()
	now := time.Now().UTC().Format(storage.TimeLayout)
	_, err := db.Exec("INSERT INTO event (id, title, status, created_at) VALUES ('e1', 'Sunday', 'live', ?)", now)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO event_session (id, event_id, code, status, started_at) VALUES ('s1', 'e1', ?, 'active', ?)", code, now)
	require.NoError(t, err)
}

func memberCheckIn(memberID string) domain.CheckIn {
	return domain.CheckIn{
		ID:        uuid.New().String(),
		Attendee:  domain.MemberAttendee{MemberID: memberID},
		CreatedAt: time.Now(),
	}
}

func guestCheckIn(first string) domain.CheckIn {
	return domain.CheckIn{
		ID:            uuid.New().String(),
		Attendee:      domain.GuestAttendee{FirstName: first, LastName: "Visitor", Phone: "021 555 0101"},
		FirstTime:     true,
		ChildrenCount: 2,
		CreatedAt:     time.Now(),
	}
}

func TestRecordByCode_Member(t *testing.T) {
	store, db := openStore(t)
	seedActiveSession(t, db, "0420")
	ctx := context.Background()

	got, err := store.RecordByCode(ctx, "0420", memberCheckIn("m1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "e1", got.EventID)

	_, err = store.RecordByCode(ctx, "0420", memberCheckIn("m1"))
	assert.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
	assert.ErrorIs(t, err, failure.ErrDuplicate)

	list, err := store.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m1", list[0].MemberID())
}

func TestRecordByCode_ConcurrentMemberCheckInsOneWins(t *testing.T) {
	store, db := openStoreAt(t, filepath.Join(t.TempDir(), "checkin.db"))
	seedActiveSession(t, db, "0420")
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.RecordByCode(ctx, "0420", memberCheckIn("m1"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
		assert.ErrorIs(t, err, failure.ErrDuplicate)
	}
	assert.Equal(t, 1, wins)

	list, err := store.ListBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordByCode_GuestsAreNotDeduplicated(t *testing.T) {
	store, db := openStore(t)
	seedActiveSession(t, db, "0420")
	ctx := context.Background()

	_, err := store.RecordByCode(ctx, "", guestCheckIn("Ana"))
	require.NoError(t, err)
	_, err = store.RecordByCode(ctx, "0420", guestCheckIn("Ana"))
	require.NoError(t, err)

	list, err := store.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	g, ok := list[0].Guest()
	require.True(t, ok)
	assert.Equal(t, "Ana Visitor", g.FullName())
	assert.True(t, list[0].FirstTime)
	assert.Equal(t, 2, list[0].ChildrenCount)
}

func TestRecordByCode_NoSession(t *testing.T) {
	store, db := openStore(t)
	ctx := context.Background()

	_, err := store.RecordByCode(ctx, "", guestCheckIn("Ana"))
	assert.ErrorIs(t, err, eventsession.ErrNoActiveSession)

	seedActiveSession(t, db, "0420")
	_, err = store.RecordByCode(ctx, "9999", memberCheckIn("m1"))
	assert.ErrorIs(t, err, eventsession.ErrInvalidCode)
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestRecordByCode_EndedSessionRejectsCode(t *testing.T) {
	store, db := openStore(t)
	seedActiveSession(t, db, "0420")
	_, err := db.Exec("UPDATE event_session SET status = 'ended'")
	require.NoError(t, err)

	_, err = store.RecordByCode(context.Background(), "0420", memberCheckIn("m1"))
	assert.ErrorIs(t, err, eventsession.ErrInvalidCode)
}

func TestRecordByCode_InvalidGuestIsRejected(t *testing.T) {
	store, db := openStore(t)
	seedActiveSession(t, db, "0420")

	c := guestCheckIn("Ana")
	c.Attendee = domain.GuestAttendee{FirstName: "Ana"}
	_, err := store.RecordByCode(context.Background(), "0420", c)
	assert.ErrorIs(t, err, failure.ErrValidation)
}
