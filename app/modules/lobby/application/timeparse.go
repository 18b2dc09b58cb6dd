package lobbyservice

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// Clock abstracts time.Now so tests can pin the lobby TTL math.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// parseCloseTime extracts a close time from open-command text like
// "until 9pm" or "for 2 hours". It returns false when the text names no
// time or names one that is not after base.
func parseCloseTime(text string, base time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	w := when.New(nil)
	w.Add(en.All...)

	r, err := w.Parse(text, base)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if !r.Time.After(base) {
		return time.Time{}, false
	}
	return r.Time, true
}
