package assets

// Progress receives fire-and-forget progress notifications. Implementations
// must return quickly since they are called inline.
type Progress interface {
	Report(activity string, percent int)
}

// ProgressFunc adapts a function to the Progress interface.
type ProgressFunc func(activity string, percent int)

func (f ProgressFunc) Report(activity string, percent int) {
	f(activity, percent)
}

// NopProgress discards all notifications.
var NopProgress Progress = ProgressFunc(func(string, int) {})

func percent(done, total int) int {
	if total == 0 {
		return 100
	}

	return done * 100 / total
}
