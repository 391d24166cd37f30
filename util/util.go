package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxSleepMinutes is the longest sleep timer the device accepts.
const MaxSleepMinutes = 540

var (
	ErrInvalidBool      = errors.New("cannot parse value as boolean, supported formats: true/false, t/f, 1/0, on/off, yes/no, y/n")
	ErrInvalidSleepTime = errors.New("invalid time format")
	ErrSleepOutOfRange  = errors.New("sleep timer must be between 0 and 540 minutes (0 = off)")
	ErrInvalidFanSpeed  = errors.New("fan speed must be between 0 and 10")
)

var (
	hoursMinutesPattern  = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)
	clockDurationPattern = regexp.MustCompile(`^(\d+):(\d+)$`)
)

// ParseBool accepts the loose on/off spellings people type on a command line.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "t", "1", "on", "yes", "y":
		return true, nil
	case "false", "f", "0", "off", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidBool, value)
}

// ParseInt reads a base 10 integer, ignoring surrounding whitespace.
func ParseInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("cannot convert %q to integer", value)
	}
	return n, nil
}

// ParseFanSpeed validates a fan speed in [0, 10].
func ParseFanSpeed(value string) (int, error) {
	speed, err := ParseInt(value)
	if err != nil {
		return 0, err
	}
	if speed < 0 || speed > 10 {
		return 0, fmt.Errorf("%w, got %d", ErrInvalidFanSpeed, speed)
	}
	return speed, nil
}

// ParseSleepTimer reads a sleep timer as raw minutes, "off", "H:MM", or an
// hours/minutes form like "2h15m", "1h" or "45m". Hours must come before
// minutes.
func ParseSleepTimer(value string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(value))

	var minutes int
	switch {
	case s == "off":
		return 0, nil
	case strings.Contains(s, ":"):
		m := clockDurationPattern.FindStringSubmatch(s)
		if m == nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSleepTime, value)
		}
		hours, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if mins >= 60 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSleepTime, value)
		}
		minutes = hours*60 + mins
	case isDigits(s):
		minutes, _ = strconv.Atoi(s)
	default:
		m := hoursMinutesPattern.FindStringSubmatch(s)
		if m == nil || (m[1] == "" && m[2] == "") {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSleepTime, value)
		}
		hours, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if hours == 0 && mins == 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSleepTime, value)
		}
		minutes = hours*60 + mins
	}

	if minutes < 0 || minutes > MaxSleepMinutes {
		return 0, ErrSleepOutOfRange
	}
	return minutes, nil
}

// FormatSleepTimer renders minutes as "2h 15m" or "45m".
func FormatSleepTimer(minutes int) string {
	if minutes/60 > 0 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes%60)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
