package pipeline

// Summary is the reduction of a finished result table.
type Summary struct {
	Total  int
	Clean  int
	Dirty  int
	Behind int
	// Unusable counts repositories that could not be opened. They are also
	// counted as clean since they carry no changes.
	Unusable int
	// Outcomes counts every switch, fetch and pull outcome by value.
	Outcomes map[Outcome]int
}

// Count returns how many records ended with outcome o.
func (s Summary) Count(o Outcome) int {
	return s.Outcomes[o]
}

// Aggregate reduces records in a single pass without modifying them.
func Aggregate(records []Record) Summary {
	s := Summary{Outcomes: make(map[Outcome]int)}
	for i := range records {
		r := &records[i]
		s.Total++
		if r.Dirty() {
			s.Dirty++
		} else {
			s.Clean++
		}
		if r.Behind > 0 {
			s.Behind++
		}
		if !r.Opened {
			s.Unusable++
		}
		if r.Switch != nil {
			s.Outcomes[r.Switch]++
		}
		if r.Sync != nil {
			s.Outcomes[r.Sync]++
		}
	}
	return s
}
