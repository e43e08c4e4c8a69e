package object

import (
	"strconv"
	"strings"
	"time"
)

// Identity is a parsed author, committer or tagger line.
type Identity struct {
	Name  string
	Email string
	// When is the zero time if the line carries no usable timestamp.
	When time.Time
}

// ParseIdentity splits a "Name <email> <unix-seconds> <+hhmm>" line. Parts
// that cannot be parsed are left empty.
func ParseIdentity(line string) Identity {
	var id Identity

	name, rest, ok := strings.Cut(line, "<")
	id.Name = strings.TrimSuffix(name, " ")
	if !ok {
		return id
	}
	email, rest, ok := strings.Cut(rest, ">")
	if !ok {
		return id
	}
	id.Email = email

	fields := strings.Fields(rest)
	if len(fields) < 1 {
		return id
	}
	sec, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || sec < 0 {
		return id
	}
	loc := time.UTC
	if len(fields) >= 2 {
		if l, ok := parseTimezone(fields[1]); ok {
			loc = l
		}
	}
	id.When = time.Unix(sec, 0).In(loc)
	return id
}

func parseTimezone(tz string) (*time.Location, bool) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, false
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, false
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, false
	}
	offset := hours*3600 + minutes*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), true
}
