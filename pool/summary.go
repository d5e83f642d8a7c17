package pool

// Summary counts the outcomes of a run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	// Errors holds the non-nil slot errors in input order.
	Errors []error
}

// Summarize tallies results.
func Summarize[R any](results []Result[R]) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		if res.Failed() {
			s.Failed++
			s.Errors = append(s.Errors, res.Err)
			continue
		}
		s.Succeeded++
	}
	return s
}

// Values returns the value of every slot, using the zero value of R for
// failed slots, plus a parallel slice reporting which slots succeeded.
func Values[R any](results []Result[R]) ([]R, []bool) {
	values := make([]R, len(results))
	ok := make([]bool, len(results))
	for i, res := range results {
		if res.Failed() {
			continue
		}
		values[i] = res.Value
		ok[i] = true
	}
	return values, ok
}
