package formula

// ShouldShow decides whether a formula applies given the day's active event
// codes. Matching is entirely tag driven:
//
//   - A formula with no event or jewish_day tags always shows.
//   - Timing tags rewrite the match target of every event tag: day_before
//     matches "erev_" plus the event code instead of the event itself,
//     motzei matches the bare code supplied by the calendar's end-of-event
//     feed. day_before takes precedence when both are present, and the
//     rewrite is exclusive: the tag's own key is never checked as a
//     fallback.
//   - A negated tag whose target is active hides the formula outright.
//   - When positive tags exist, at least one must match.
func ShouldShow(tags []Tag, activeEvents []string) bool {
	var eventTags []Tag
	dayBefore, motzei := false, false
	for _, tag := range tags {
		switch tag.Type {
		case TagEvent, TagJewishDay:
			eventTags = append(eventTags, tag)
		case TagTiming:
			switch tag.Key {
			case "day_before":
				dayBefore = true
			case "motzei":
				motzei = true
			}
		}
	}

	if len(eventTags) == 0 {
		return true
	}

	active := make(map[string]bool, len(activeEvents))
	for _, code := range activeEvents {
		active[code] = true
	}

	positiveMatch := false
	positiveTags := false
	for _, tag := range eventTags {
		target := tag.Key
		if dayBefore {
			// Candle lighting shows on the eve, never on the day itself.
			target = "erev_" + tag.Key
		} else if motzei {
			target = tag.Key
		}

		if tag.Negated {
			if active[target] {
				return false
			}
			continue
		}
		positiveTags = true
		if active[target] {
			positiveMatch = true
		}
	}

	if positiveTags && !positiveMatch {
		return false
	}
	return true
}
