package models

// Summary counts outcomes of a batch
type Summary struct {
	Total             int
	Succeeded         int
	ApplicationErrors int
	TransportErrors   int
}

// Failed returns the number of outcomes that were not successful
func (s Summary) Failed() int {
	return s.ApplicationErrors + s.TransportErrors
}

// Summarize tallies outcomes by kind
func Summarize(outcomes []TaskOutcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeSuccess:
			s.Succeeded++
		case OutcomeApplicationError:
			s.ApplicationErrors++
		case OutcomeTransportError:
			s.TransportErrors++
		}
	}
	return s
}
