package entity

import "strings"

// Request types
const (
	RequestTypeGoods        = "goods"
	RequestTypeServices     = "services"
	RequestTypeSoftware     = "software"
	RequestTypeHardware     = "hardware"
	RequestTypeSubscription = "subscription"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Departments maps the lowercase department key to its display name
var Departments = map[string]string{
	"administration": "Administration",
	"it":             "IT",
	"marketing":      "Marketing",
	"hr":             "HR",
	"sales":          "Sales",
	"facilities":     "Facilities",
	"research":       "Research",
	"executive":      "Executive",
	"legal":          "Legal",
	"finance":        "Finance",
	"operations":     "Operations",
}

// NormalizeDepartment returns the display name for a known department, or the trimmed input
func NormalizeDepartment(name string) string {
	trimmed := strings.TrimSpace(name)
	if display, ok := Departments[strings.ToLower(trimmed)]; ok {
		return display
	}
	return trimmed
}
