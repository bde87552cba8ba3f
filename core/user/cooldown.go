package user

import (
	"sync"
	"time"
)

// resendCooldown tracks the last verification send per email so repeat
// requests inside the lockout window are rejected server-side, not just
// greyed out in the UI.
type resendCooldown struct {
	sync.Mutex
	window   time.Duration
	lastSent map[string]time.Time
}

func newResendCooldown(window time.Duration) *resendCooldown {
	return &resendCooldown{
		window:   window,
		lastSent: make(map[string]time.Time),
	}
}

// allow records a send attempt for email and reports whether it may proceed.
func (rc *resendCooldown) allow(email string) bool {
	rc.Lock()
	defer rc.Unlock()

	now := NowFunc()
	if last, ok := rc.lastSent[email]; ok && now.Sub(last) < rc.window {
		return false
	}
	rc.lastSent[email] = now
	return true
}
