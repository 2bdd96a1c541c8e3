package pool

import (
	"time"

	"github.com/Qthai16/go-listqueue/utils"
)

var timers = New(Config[time.Timer]{
	Generate: func() *time.Timer {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	},
})

// BorrowTimer returns a timer armed to fire after d. Give it back with
// ReturnTimer once it is no longer selected on.
func BorrowTimer(d time.Duration) *time.Timer {
	t := timers.Get()
	if t.Reset(d) {
		utils.LogFatal("[timer_pool] pool returned an active timer")
	}
	return t
}

func ReturnTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timers.Put(&t)
}
