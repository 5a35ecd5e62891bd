package httpapi

import (
	"net/http"
	"strconv"
	"sync"

	"huongque-storefront/storefront-svc/internal/service"

	"github.com/google/uuid"
)

const SessionHeader = "X-Session-ID"

// visitorLocks serializes requests per visitor so a mutation, its persist
// and the recompute finish before the next request reads the namespace.
// An entry lives only while some request holds or waits for it.
type visitorLocks struct {
	mu    sync.Mutex
	locks map[string]*visitorLock
}

type visitorLock struct {
	sync.Mutex
	refs int
}

func newVisitorLocks() *visitorLocks {
	return &visitorLocks{locks: make(map[string]*visitorLock)}
}

func (v *visitorLocks) acquire(sid string) *visitorLock {
	v.mu.Lock()
	lock, ok := v.locks[sid]
	if !ok {
		lock = &visitorLock{}
		v.locks[sid] = lock
	}
	lock.refs++
	v.mu.Unlock()

	lock.Lock()
	return lock
}

func (v *visitorLocks) release(sid string, lock *visitorLock) {
	lock.Unlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(v.locks, sid)
	}
}

func (v *visitorLocks) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.locks)
}

// visitorID returns the session id sent by the client, or a new one.
func visitorID(r *http.Request) string {
	if sid, err := uuid.Parse(r.Header.Get(SessionHeader)); err == nil {
		return sid.String()
	}
	return uuid.NewString()
}

// visit is one request's view of a visitor.
type visit struct {
	id      string
	session service.Session
	notes   *service.Notifications
}

func (h *Handler) newVisit(w http.ResponseWriter, r *http.Request) *visit {
	sid := visitorID(r)
	w.Header().Set(SessionHeader, sid)

	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	notes := &service.Notifications{}

	return &visit{
		id:    sid,
		notes: notes,
		session: service.Session{
			Store:     h.store.Namespace("visitor:" + sid + ":"),
			Clock:     h.clock,
			Confirm:   service.ConfirmFunc(func(string) bool { return confirm }),
			Notify:    notes,
			Logger:    h.logger.With(logField(sid)),
			Archive:   h.archive,
			Publisher: h.publisher,
			Metrics:   h.metrics,
		},
	}
}

// locked runs fn while holding the visitor's lock.
func (h *Handler) locked(v *visit, fn func()) {
	lock := h.visitors.acquire(v.id)
	defer h.visitors.release(v.id, lock)
	fn()
}
