package update

import (
	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/timer"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// timerSeconds is the wall time one exercise takes on the timer,
// including its PREP countdown.
func timerSeconds(e model.Exercise) int {
	return timer.PrepTime + e.PlannedSeconds()
}
