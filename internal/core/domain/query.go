package domain

import "strings"

// Route is the intent label assigned to a question by the router.
type Route string

// Available routes.
const (
	// RouteList requests enumerated options or recommendations.
	RouteList Route = "list"

	// RouteDetail requests step-level operational or procedural guidance.
	RouteDetail Route = "detail"

	// RouteGeneral requests definitional or explanatory information.
	RouteGeneral Route = "general"
)

// IsValid returns true if the route is one of the three labels.
func (r Route) IsValid() bool {
	switch r {
	case RouteList, RouteDetail, RouteGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Route) String() string {
	return string(r)
}

// ParseRoute maps untrusted classifier output to a route. The text is
// trimmed and lower-cased; anything other than an exact label is general.
func ParseRoute(s string) Route {
	r := Route(strings.ToLower(strings.TrimSpace(s)))
	if r.IsValid() {
		return r
	}
	return RouteGeneral
}

// DeliveryMode selects how an answer is handed to the caller.
type DeliveryMode int

const (
	// DeliveryBlocking returns the complete answer text.
	DeliveryBlocking DeliveryMode = iota

	// DeliveryStream returns a lazy sequence of text fragments.
	DeliveryStream
)

// String returns the string representation.
func (m DeliveryMode) String() string {
	if m == DeliveryStream {
		return "stream"
	}
	return "blocking"
}

// Filters are structured retrieval constraints derived from a question.
type Filters struct {
	// Category restricts retrieval to fragments with this category label.
	Category string `json:"category,omitempty"`
}

// IsEmpty returns true if no constraint is set.
func (f Filters) IsEmpty() bool {
	return f.Category == ""
}

// Matches returns true if the metadata satisfies every set constraint.
func (f Filters) Matches(m Metadata) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	return true
}

// QueryContext carries the state of answering one question.
// It is never persisted.
type QueryContext struct {
	Question  string
	Route     Route
	Rewritten string
	Filters   Filters
	Fragments []ChildFragment
	Parents   []RankedParent
	Context   string
}

// SearchQuery returns the text used for retrieval: the rewritten question
// when present, the original otherwise.
func (q *QueryContext) SearchQuery() string {
	if q.Rewritten != "" {
		return q.Rewritten
	}
	return q.Question
}

// Answer is the result of the query pipeline. In blocking mode Text holds
// the full answer; in stream mode Stream must be drained or closed by the
// caller.
type Answer struct {
	Query  *QueryContext
	Mode   DeliveryMode
	Text   string
	Stream TextStream

	// NotFound is true when retrieval matched nothing.
	NotFound bool
}
