package firstgov

import "govsearch-backend/lib/fedsearch"

// Hooks receive extraction milestones. Every field is optional and the
// session never depends on them for correctness.
type Hooks struct {
	// OnRecord fires for every extracted record, in encounter order.
	OnRecord func(rec fedsearch.Record)
	// OnCount fires at most once per session, when the approximate
	// total is first parsed.
	OnCount func(total int)
	// OnPagination fires after every fetched page with the pagination
	// decision. next is empty when more is false.
	OnPagination func(next string, more bool)
}

func (h Hooks) record(rec fedsearch.Record) {
	if h.OnRecord != nil {
		h.OnRecord(rec)
	}
}

func (h Hooks) count(total int) {
	if h.OnCount != nil {
		h.OnCount(total)
	}
}

func (h Hooks) pagination(next string, more bool) {
	if h.OnPagination != nil {
		h.OnPagination(next, more)
	}
}
