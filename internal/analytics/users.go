package analytics

import (
	"sort"
	"time"
)

// userTracker keeps one distinct-user set per day
type userTracker struct {
	days map[string]map[string]struct{}
}

func newUserTracker() *userTracker {
	return &userTracker{days: make(map[string]map[string]struct{})}
}

func (u *userTracker) add(date, userID string) {
	if userID == "" {
		return
	}
	set, ok := u.days[date]
	if !ok {
		set = make(map[string]struct{})
		u.days[date] = set
	}
	set[userID] = struct{}{}
}

// count returns the number of distinct users seen on date
func (u *userTracker) count(date string) int {
	return len(u.days[date])
}

// total returns the size of the union of all daily sets
func (u *userTracker) total() int {
	return len(u.union())
}

// users returns the sorted union of all daily sets
func (u *userTracker) users() []string {
	all := u.union()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// newUsers counts users active on date whose first appearance ever was that date
func (u *userTracker) newUsers(date string, firstSeen map[string]time.Time) int {
	n := 0
	for id := range u.days[date] {
		if first, ok := firstSeen[id]; ok && DateKey(first) == date {
			n++
		}
	}
	return n
}

func (u *userTracker) union() map[string]struct{} {
	all := make(map[string]struct{})
	for _, set := range u.days {
		for id := range set {
			all[id] = struct{}{}
		}
	}
	return all
}
