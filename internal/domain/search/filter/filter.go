package filter

import (
	"fmt"
	"sort"
)

// MaxConditions is the maximum number of conditions per filter.
const MaxConditions = 32

// Kind discriminates the predicate type of a condition. Only equality is
// served today; new kinds extend the enum without changing existing callers.
type Kind string

const (
	// KindEquals requires the attribute to equal the value exactly.
	KindEquals Kind = "equals"
)

// Filter is a conjunction of attribute conditions: a hit matches only when
// every condition holds.
type Filter struct {
	conditions []Condition
}

// New validates and creates a Filter.
func New(conditions ...Condition) (Filter, error) {
	if len(conditions) > MaxConditions {
		return Filter{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Filter{conditions: conditions}, nil
}

// FromMap builds an equality filter from an attribute map. Keys are sorted so
// the condition order is deterministic regardless of map iteration.
func FromMap(attrs map[string]string) (Filter, error) {
	if len(attrs) == 0 {
		return Filter{}, nil
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]Condition, 0, len(keys))
	for _, k := range keys {
		c, err := Equals(k, attrs[k])
		if err != nil {
			return Filter{}, err
		}
		conditions = append(conditions, c)
	}
	return New(conditions...)
}

// Conditions returns the conjunction's conditions.
func (f Filter) Conditions() []Condition { return f.conditions }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f.conditions) == 0 }

// Condition is a single attribute predicate, tagged by Kind.
type Condition struct {
	key   string
	kind  Kind
	value string
}

// Equals creates an exact equality condition.
func Equals(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("filter value is required for key %q", key)
	}
	return Condition{key: key, kind: KindEquals, value: value}, nil
}

// Key returns the attribute name.
func (c Condition) Key() string { return c.key }

// Kind returns the predicate kind.
func (c Condition) Kind() Kind { return c.kind }

// Value returns the required attribute value.
func (c Condition) Value() string { return c.value }
