package kaimono

// resolveWindow computes the fetch window for one sync cycle.
//
// With a persisted record the window starts the day after it; on an empty
// store it starts at the source's floor date. Either way it ends on
// yesterday — never today, because the source's same-day data may still
// change. The second return is false when nothing needs fetching (the
// store is already synced through yesterday), which callers treat as a
// no-op success.
func resolveWindow(mostRecent *Date, floor Date, today Date) (Range, bool) {
	yesterday := today.AddDays(-1)

	start := floor
	if mostRecent != nil {
		start = mostRecent.AddDays(1)
	}

	if start.After(yesterday) {
		return Range{}, false
	}
	return Range{Start: start, End: yesterday}, true
}
