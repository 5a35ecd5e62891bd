package tests

import (
	"testing"
	"time"

	"huongque-storefront/storefront-svc/internal/service"
	"huongque-storefront/storefront-svc/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ict = time.FixedZone("ICT", 7*60*60)

// 2025-06-10 14:10 local time.
var fixedNow = time.Date(2025, time.June, 10, 14, 10, 0, 0, ict)

func fixedClock(t time.Time) service.Clock {
	return func() time.Time { return t }
}

func setupRedis(t *testing.T) (*storage.KV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewKV(storage.NewRedisBackend(client), time.Second, zap.NewNop()), mr
}

// newSession returns a visitor session whose confirmation gate answers
// confirm and whose notifications are collected.
func newSession(t *testing.T, confirm bool) (service.Session, *service.Notifications, *miniredis.Miniredis) {
	t.Helper()
	kv, mr := setupRedis(t)
	notes := &service.Notifications{}
	return service.Session{
		Store:   kv.Namespace("visitor:test:"),
		Clock:   fixedClock(fixedNow),
		Confirm: service.ConfirmFunc(func(string) bool { return confirm }),
		Notify:  notes,
		Logger:  zap.NewNop(),
	}, notes, mr
}

func lastNotification(notes *service.Notifications) service.Notification {
	list := notes.List()
	if len(list) == 0 {
		return service.Notification{}
	}
	return list[len(list)-1]
}
