package filter

import (
	"strings"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// All disables the status or department predicate
const All = "all"

// Query selects requests for the list view
type Query struct {
	Text       string
	Status     string
	Department string
}

// IsEmpty reports whether the query matches every request
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" && disabled(q.Status) && disabled(q.Department)
}

// Matches evaluates the query against a single request
func (q Query) Matches(r *entity.Request) bool {
	return matchesText(r, q.Text) && matchesStatus(r, q.Status) && matchesDepartment(r, q.Department)
}

// Apply returns the requests matching q in their original order
func Apply(requests []*entity.Request, q Query) []*entity.Request {
	out := make([]*entity.Request, 0, len(requests))
	for _, r := range requests {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func matchesText(r *entity.Request, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ID), needle) ||
		strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Requester), needle)
}

func matchesStatus(r *entity.Request, status string) bool {
	if disabled(status) {
		return true
	}
	return string(r.Status) == strings.ToLower(strings.TrimSpace(status))
}

func matchesDepartment(r *entity.Request, department string) bool {
	if disabled(department) {
		return true
	}
	return strings.EqualFold(r.Department, strings.TrimSpace(department))
}

func disabled(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, All)
}
