package config

import (
	"sort"
	"strconv"
	"strings"
)

// AdminSet is the parsed list of privileged chat ids.
type AdminSet struct {
	ids []int64
	set map[int64]struct{}
}

// ParseAdminSet reads ids separated by commas, semicolons or whitespace.
func ParseAdminSet(raw string) (AdminSet, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return AdminSet{}, &ConfigurationError{Key: "ADMIN_CHAT_ID", Reason: "at least one admin chat id is required"}
	}

	s := AdminSet{set: make(map[int64]struct{}, len(fields))}
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return AdminSet{}, &ConfigurationError{Key: "ADMIN_CHAT_ID", Reason: "invalid chat id " + strconv.Quote(f), Err: err}
		}
		if _, dup := s.set[id]; dup {
			continue
		}
		s.set[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	sort.Slice(s.ids, func(i, j int) bool { return s.ids[i] < s.ids[j] })
	return s, nil
}

func (s AdminSet) Contains(id int64) bool {
	_, ok := s.set[id]
	return ok
}

// IDs returns the admin ids in ascending order.
func (s AdminSet) IDs() []int64 {
	return append([]int64(nil), s.ids...)
}

func (s AdminSet) Len() int { return len(s.ids) }
