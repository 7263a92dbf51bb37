package loggit

/*
Rotation rules and the policy check. Three rule shapes are accepted:

	"<integer> KB|MB|GB|TB"                size threshold, binary multipliers
	"<integer> hour|day|week|month|year"   elapsed period (month=30d, year=365d)
	"HH:MM"                                every day at that clock time

Period and time-of-day rules carry an absolute unix trigger that is
regenerated whenever any rule fires; a size rule's trigger is the byte
threshold itself and is reused verbatim on reset.
*/

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrBadRotation = errors.New("unrecognized rotation rule")

const (
	SECONDS_IN_HOUR  = 60 * 60
	SECONDS_IN_DAY   = 24 * SECONDS_IN_HOUR
	SECONDS_IN_WEEK  = 7 * SECONDS_IN_DAY
	SECONDS_IN_MONTH = 30 * SECONDS_IN_DAY  // approximate month length
	SECONDS_IN_YEAR  = 365 * SECONDS_IN_DAY // non-leap year
)

var periodUnits = map[string]int64{
	"hour":  SECONDS_IN_HOUR,
	"day":   SECONDS_IN_DAY,
	"week":  SECONDS_IN_WEEK,
	"month": SECONDS_IN_MONTH,
	"year":  SECONDS_IN_YEAR,
}

var sizeUnits = map[string]int64{
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// parseRotation turns a rule string into a rotationRule with its first
// trigger computed from now. Any unrecognized shape is rejected.
func parseRotation(text string, now time.Time) (rotationRule, error) {
	if h, m, ok := parseClock(text); ok {
		r := rotationRule{kind: ROT_TIME_OF_DAY, hour: h, minute: m}
		r.reset(now)
		return r, nil
	}
	if num, unit, ok := splitNumUnit(text); ok {
		if mult, is := sizeUnits[unit]; is {
			r := rotationRule{kind: ROT_SIZE, trigger: num * mult}
			return r, nil
		}
		if secs, is := periodUnits[unit]; is {
			r := rotationRule{kind: ROT_PERIOD, period: num * secs}
			r.reset(now)
			return r, nil
		}
	}
	return rotationRule{}, fmt.Errorf("%w: %q", ErrBadRotation, text)
}

// parseClock matches "HH:MM" with 0-23 hours and 0-59 minutes.
func parseClock(text string) (hour, minute int, ok bool) {
	sp := strings.Split(text, ":")
	if len(sp) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(sp[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(sp[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// splitNumUnit matches "<integer> <unit>" with exactly one space.
func splitNumUnit(text string) (num int64, unit string, ok bool) {
	sp := strings.Split(text, " ")
	if len(sp) != 2 {
		return 0, "", false
	}
	n, err := strconv.ParseInt(sp[0], 10, 64)
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, sp[1], true
}

// fired reports whether the rule requires a rotation right now. Period and
// time-of-day rules compare against the clock, size rules against the
// current file length.
func (r *rotationRule) fired(now time.Time, size int64) bool {
	switch r.kind {
	case ROT_SIZE:
		return size >= r.trigger
	default:
		return now.Unix() >= r.trigger
	}
}

// reset regenerates the rule's trigger for the next cycle from the given
// snapshot moment. Size thresholds are left untouched: the physical file
// restarts at zero bytes, the rule does not change.
func (r *rotationRule) reset(now time.Time) {
	switch r.kind {
	case ROT_PERIOD:
		r.trigger = now.Unix() + r.period
	case ROT_TIME_OF_DAY:
		next := time.Date(now.Year(), now.Month(), now.Day(), r.hour, r.minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		r.trigger = next.Unix()
	}
}

// shouldRotate evaluates every rule against one snapshot of (now, size).
// When any rule fires, all triggers are regenerated from that same snapshot
// and the caller performs exactly one physical rotation, even if several
// rules fired simultaneously.
func shouldRotate(rules []rotationRule, now time.Time, size int64) bool {
	fired := false
	for i := range rules {
		if rules[i].fired(now, size) {
			fired = true
			break
		}
	}
	if fired {
		for i := range rules {
			rules[i].reset(now)
		}
	}
	return fired
}
