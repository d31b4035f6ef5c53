package item

import (
	"sort"
	"strings"
	"time"
)

// UpcomingWindow is how far ahead the "upcoming" derived read looks.
const UpcomingWindow = 3 * 24 * time.Hour

// Matches applies the filter to one item. Soft-deleted items never match
// unless IncludeDeleted is set; deletion takes precedence over the archive
// axis, so a deleted item is invisible even to archived listings.
func (f Filter) Matches(it *Item) bool {
	if it.IsDeleted() && !f.IncludeDeleted {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if f.Status != "" && it.Status != f.Status {
		return false
	}
	if f.Tag != "" && !it.HasTag(f.Tag) {
		return false
	}
	if f.Archived != nil {
		if *f.Archived != it.IsArchived() {
			return false
		}
	} else if it.IsArchived() {
		return false
	}
	return true
}

// Select returns the items matching the filter, newest first. Both the Vault
// and the remote client's derived reads go through this so the two modes
// stay observationally identical.
func (f Filter) Select(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for i := range items {
		if f.Matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	SortByCreatedDesc(out)
	return out
}

func SortByCreatedDesc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func SortByDueAsc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DueDate, items[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

func isOpen(it *Item) bool {
	return it.Status != StatusCompleted && it.Status != StatusCancelled
}

// Upcoming keeps open items due within the next three days, soonest first.
func Upcoming(items []Item, now time.Time) []Item {
	horizon := now.Add(UpcomingWindow)
	out := make([]Item, 0)
	for i := range items {
		it := &items[i]
		if it.IsDeleted() || it.IsArchived() || !isOpen(it) || it.DueDate == nil {
			continue
		}
		if it.DueDate.Before(now) || it.DueDate.After(horizon) {
			continue
		}
		out = append(out, *it)
	}
	SortByDueAsc(out)
	return out
}

// Todo keeps open tasks and events.
func Todo(items []Item) []Item {
	out := make([]Item, 0)
	for i := range items {
		it := &items[i]
		if it.IsDeleted() || it.IsArchived() || !isOpen(it) {
			continue
		}
		if it.Type != KindTask && it.Type != KindEvent {
			continue
		}
		out = append(out, *it)
	}
	return out
}

// Inbox keeps notes only; the inbox is the home of record-keeping content.
func Inbox(items []Item) []Item {
	return Filter{Type: KindNote}.Select(items)
}

// InWindow reports whether the item's due date or start time falls inside
// [start, end]. Used by the calendar read.
func (i *Item) InWindow(start, end time.Time) bool {
	within := func(t *time.Time) bool {
		return t != nil && !t.Before(start) && !t.After(end)
	}
	return within(i.DueDate) || within(i.StartTime)
}

// Calendar keeps non-deleted, non-archived items whose due date or start
// time falls inside [start, end].
func Calendar(items []Item, start, end time.Time) []Item {
	out := make([]Item, 0)
	for i := range items {
		it := &items[i]
		if it.IsDeleted() || it.IsArchived() {
			continue
		}
		if it.InWindow(start, end) {
			out = append(out, *it)
		}
	}
	return out
}

// MatchesQuery applies the structured search to a non-deleted item.
func (q Query) MatchesQuery(it *Item) bool {
	if it.IsDeleted() || it.IsArchived() {
		return false
	}
	if len(q.Types) > 0 && !containsKind(q.Types, it.Type) {
		return false
	}
	if len(q.Statuses) > 0 && !containsString(q.Statuses, it.Status) {
		return false
	}
	if len(q.Tags) > 0 {
		found := false
		for _, tag := range q.Tags {
			if it.HasTag(tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	haystack := strings.ToLower(it.Title + " " + it.Description + " " + it.RawText)
	if q.SearchText != "" && !strings.Contains(haystack, strings.ToLower(q.SearchText)) {
		return false
	}
	if len(q.Keywords) > 0 {
		found := false
		for _, kw := range q.Keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.Start != nil && it.CreatedAt.Before(*q.Start) {
		return false
	}
	if q.End != nil && it.CreatedAt.After(*q.End) {
		return false
	}
	return true
}

// Search matches any of the terms against title, description, raw text or
// tags, case-insensitively. Archived and soft-deleted items never match.
func Search(items []Item, terms []string) []Item {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	out := make([]Item, 0)
	for i := range items {
		it := &items[i]
		if it.IsDeleted() || it.IsArchived() {
			continue
		}
		text := strings.ToLower(it.Title + " " + it.Description + " " + it.RawText)
		match := false
		for _, term := range lowered {
			if strings.Contains(text, term) {
				match = true
				break
			}
			for _, tag := range it.Tags {
				if strings.Contains(strings.ToLower(tag), term) {
					match = true
					break
				}
			}
			if match {
				break
			}
		}
		if match {
			out = append(out, *it)
		}
	}
	return out
}

// TagStats aggregates tag usage over non-archived, non-deleted items.
func TagStats(items []Item) []TagStat {
	type acc struct {
		count    int
		lastUsed time.Time
	}
	counts := map[string]*acc{}
	order := []string{}
	for i := range items {
		it := &items[i]
		if it.IsDeleted() || it.IsArchived() {
			continue
		}
		for _, tag := range it.Tags {
			a, ok := counts[tag]
			if !ok {
				a = &acc{}
				counts[tag] = a
				order = append(order, tag)
			}
			a.count++
			if it.UpdatedAt.After(a.lastUsed) {
				a.lastUsed = it.UpdatedAt
			}
		}
	}
	stats := make([]TagStat, 0, len(order))
	for _, tag := range order {
		stats = append(stats, TagStat{Tag: tag, Count: counts[tag].count, LastUsed: counts[tag].lastUsed})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats
}

func containsKind(ks []Kind, k Kind) bool {
	for _, v := range ks {
		if v == k {
			return true
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
