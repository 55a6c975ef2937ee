package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/alexanderramin/studylog/internal/db"
	"github.com/alexanderramin/studylog/internal/domain"
)

// SnapshotFunc receives the complete session list of one user. The slice is
// owned by the receiver.
type SnapshotFunc func([]domain.Session)

// ErrorFunc receives a subscription failure. The subscription stays attached
// and delivers again on the next change.
type ErrorFunc func(error)

// Detach ends a subscription. Calling it more than once is a no-op.
type Detach func()

// Store is the per-user session collection: transactional appends plus a live
// feed of full snapshots.
type Store struct {
	conn db.DBTX
	uow  db.UnitOfWork

	mu   sync.Mutex
	subs map[uint64]*subscription
	next uint64
}

// NewStore creates a Store over an opened database.
func NewStore(conn *sql.DB, uow db.UnitOfWork) *Store {
	return &Store{conn: conn, uow: uow, subs: make(map[uint64]*subscription)}
}

// Append persists s, assigning its ID, and pushes a fresh snapshot to every
// live subscriber of s.UserID. Nothing is written on failure.
func (st *Store) Append(ctx context.Context, s *domain.Session) error {
	err := st.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteSessionRepo(tx).Create(ctx, s)
	})
	if err != nil {
		s.ID = ""
		return fmt.Errorf("%w: appending session: %w", domain.ErrStore, err)
	}
	st.Notify(s.UserID)
	return nil
}

// ListByUser is a one-shot read of the user's sessions.
func (st *Store) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	sessions, err := NewSQLiteSessionRepo(st.conn).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return sessions, nil
}

// Subscribe attaches a live listener for userID. The first snapshot arrives
// shortly after the call; later ones follow every change. Callbacks for one
// subscription never run concurrently.
func (st *Store) Subscribe(userID string, onSnapshot SnapshotFunc, onError ErrorFunc) Detach {
	sub := &subscription{
		userID:     userID,
		onSnapshot: onSnapshot,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	st.mu.Lock()
	id := st.next
	st.next++
	st.subs[id] = sub
	st.mu.Unlock()

	sub.signal()
	go sub.run(st.ListByUser)

	return func() {
		sub.once.Do(func() {
			st.mu.Lock()
			delete(st.subs, id)
			st.mu.Unlock()
			close(sub.done)
		})
	}
}

// Notify schedules a snapshot for every subscriber of userID. Bursts of
// notifications collapse into one delivery.
func (st *Store) Notify(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, sub := range st.subs {
		if sub.userID == userID {
			sub.signal()
		}
	}
}

// RefreshAll schedules a snapshot for every subscriber. Used when another
// process has written to the database.
func (st *Store) RefreshAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, sub := range st.subs {
		sub.signal()
	}
}

// Subscribers reports how many subscriptions are attached.
func (st *Store) Subscribers() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.subs)
}

type subscription struct {
	userID     string
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) run(load func(context.Context, string) ([]domain.Session, error)) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		sessions, err := load(ctx, s.userID)

		select {
		case <-s.done:
			return
		default:
		}
		if err != nil {
			if s.onError != nil {
				s.onError(err)
			}
			continue
		}
		if s.onSnapshot != nil {
			s.onSnapshot(sessions)
		}
	}
}
