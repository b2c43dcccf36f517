package models

import "sort"

// SortedQuestions returns a copy of questions ordered by Order ascending.
// Questions sharing an Order keep their original relative position.
func SortedQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	for i := range out {
		out[i].Options = SortedOptions(out[i].Options)
	}
	return out
}

// SortedOptions returns a copy of options ordered by Order ascending, stable.
func SortedOptions(options []Option) []Option {
	if options == nil {
		return nil
	}
	out := make([]Option, len(options))
	copy(out, options)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
