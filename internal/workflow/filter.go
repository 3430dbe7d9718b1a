package workflow

// FilterByMonth keeps records whose date falls in the given YYYY-MM
// month. Records with a missing or malformed date are excluded.
func FilterByMonth(records []Record, month string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if m := r.Month(); m != "" && m == month {
			out = append(out, r)
		}
	}
	return out
}

// FilterByUser keeps records submitted by the given user
func FilterByUser(records []Record, userID string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// FilterByStatus keeps records whose canonical status matches
func FilterByStatus(records []Record, status Status) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// ReadyForFinal keeps records awaiting the manager's sign-off: approved
// by the accountant but not yet finalized either way.
func ReadyForFinal(records []Record) []Record {
	return FilterByStatus(records, StatusApproved)
}

// GroupKey identifies one (user, month) bucket
type GroupKey struct {
	UserID string
	Month  string
}

// Group is one bucket of records sharing a (user, month) key
type Group struct {
	Key     GroupKey
	Records []Record
}

// GroupByUserAndMonth partitions records by submitting user and month
// bucket. Groups are emitted in first-seen key order, so equal inputs
// always produce identical output.
func GroupByUserAndMonth(records []Record) []Group {
	index := make(map[GroupKey]int, len(records))
	groups := make([]Group, 0)
	for _, r := range records {
		key := GroupKey{UserID: r.UserID, Month: r.Month()}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
