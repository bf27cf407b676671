// Package fixtures holds the sample procurement data used to seed stores.
package fixtures

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

const (
	procurementManager = "Cameron Williamson"
	financeDirector    = "Brooklyn Simmons"
)

var departmentHeads = map[string]string{
	"Administration": "Kristin Watson",
	"IT":             "Esther Howard",
	"Marketing":      "Guy Hawkins",
	"HR":             "Ralph Edwards",
	"Sales":          "Albert Flores",
	"Facilities":     "Jerome Bell",
	"Research":       "Floyd Miles",
	"Executive":      "Dianne Russell",
	"Legal":          "Marvin McKinney",
}

// DefaultChain is the approval chain used for the department of a sample request
func DefaultChain(department string) []entity.ChainStage {
	return []entity.ChainStage{
		{Role: department + " Department Head", Approver: departmentHeads[department]},
		{Role: "Procurement Manager", Approver: procurementManager},
		{Role: "Finance Director", Approver: financeDirector},
	}
}

type sample struct {
	seq           int
	title         string
	requester     string
	department    string
	requestType   string
	priority      string
	justification string
	created       time.Time
	due           time.Time
	status        entity.Status
	items         []entity.LineItem
}

func item(desc string, qty int, price string) entity.LineItem {
	return entity.LineItem{Description: desc, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func day(month time.Month, d, hour int) time.Time {
	return time.Date(2023, month, d, hour, 0, 0, 0, time.UTC)
}

var samples = []sample{
	{
		seq: 1287, title: "Office Supplies Bulk Order", requester: "Jane Cooper", department: "Administration",
		requestType: entity.RequestTypeGoods, priority: entity.PriorityLow,
		justification: "Quarterly restock of shared office supplies.",
		created:       day(time.June, 15, 9), due: day(time.June, 30, 0), status: entity.StatusApproved,
		items: []entity.LineItem{
			item("Printer paper (case)", 20, "32.50"),
			item("Assorted pens and markers", 30, "12.00"),
			item("Desk organizers", 12, "20.00"),
		},
	},
	{
		seq: 1286, title: "IT Hardware Procurement", requester: "Wade Warren", department: "IT",
		requestType: entity.RequestTypeHardware, priority: entity.PriorityMedium,
		justification: "Replacement of outdated laptops for the development team. Current machines are over 4 years old and experiencing performance issues that impact productivity.",
		created:       day(time.June, 14, 9), due: day(time.July, 10, 0), status: entity.StatusPending,
		items: []entity.LineItem{
			item("Dell XPS 15 Laptop", 5, "1800"),
			item("27\" 4K Monitor", 5, "450"),
			item("Wireless Keyboard and Mouse Bundle", 5, "120"),
			item("Laptop Docking Station", 5, "180"),
		},
	},
	{
		seq: 1285, title: "Software Licenses Renewal", requester: "Esther Howard", department: "IT",
		requestType: entity.RequestTypeSoftware, priority: entity.PriorityHigh,
		justification: "Annual renewal of design and project management licenses.",
		created:       day(time.June, 13, 11), due: day(time.July, 1, 0), status: entity.StatusDraft,
		items: []entity.LineItem{
			item("Design suite annual license", 10, "650"),
			item("Project management seats", 20, "100"),
		},
	},
	{
		seq: 1284, title: "Marketing Materials", requester: "Cameron Williamson", department: "Marketing",
		requestType: entity.RequestTypeGoods, priority: entity.PriorityMedium,
		justification: "Collateral for the autumn trade show season.",
		created:       day(time.June, 12, 10), due: day(time.July, 15, 0), status: entity.StatusRejected,
		items: []entity.LineItem{
			item("Trade show banners", 4, "350"),
			item("Printed brochures (box of 500)", 6, "300"),
		},
	},
	{
		seq: 1283, title: "Staff Training Services", requester: "Brooklyn Simmons", department: "HR",
		requestType: entity.RequestTypeServices, priority: entity.PriorityMedium,
		justification: "Leadership programme for newly promoted team leads.",
		created:       day(time.June, 10, 14), due: day(time.June, 28, 0), status: entity.StatusCompleted,
		items: []entity.LineItem{
			item("Leadership workshop (per seat)", 8, "600"),
			item("Training materials", 1, "1000"),
		},
	},
	{
		seq: 1282, title: "Conference Equipment Rental", requester: "Leslie Alexander", department: "Sales",
		requestType: entity.RequestTypeServices, priority: entity.PriorityHigh,
		justification: "Equipment for the regional sales kickoff.",
		created:       day(time.June, 8, 9), due: day(time.June, 20, 0), status: entity.StatusApproved,
		items: []entity.LineItem{
			item("Projector rental (per day)", 3, "450"),
			item("PA system rental", 1, "1000"),
		},
	},
	{
		seq: 1281, title: "Building Maintenance Services", requester: "Jacob Jones", department: "Facilities",
		requestType: entity.RequestTypeServices, priority: entity.PriorityUrgent,
		justification: "Scheduled HVAC servicing and roof repair before the rainy season.",
		created:       day(time.June, 7, 8), due: day(time.June, 21, 0), status: entity.StatusCompleted,
		items: []entity.LineItem{
			item("HVAC servicing contract", 1, "9500"),
			item("Roof inspection and repair", 1, "6200"),
		},
	},
	{
		seq: 1280, title: "Research Database Subscription", requester: "Devon Lane", department: "Research",
		requestType: entity.RequestTypeSubscription, priority: entity.PriorityMedium,
		justification: "Access to journal archives for the analytics group.",
		created:       day(time.June, 5, 10), due: day(time.July, 5, 0), status: entity.StatusPending,
		items: []entity.LineItem{
			item("Annual database subscription", 1, "7900"),
		},
	},
	{
		seq: 1279, title: "Travel Arrangements", requester: "Courtney Henry", department: "Executive",
		requestType: entity.RequestTypeServices, priority: entity.PriorityHigh,
		justification: "Executive visit to the partner office.",
		created:       day(time.June, 3, 9), due: day(time.June, 18, 0), status: entity.StatusApproved,
		items: []entity.LineItem{
			item("Round-trip flights", 3, "1100"),
			item("Hotel nights", 5, "190"),
		},
	},
	{
		seq: 1278, title: "Legal Consultation Services", requester: "Theresa Webb", department: "Legal",
		requestType: entity.RequestTypeServices, priority: entity.PriorityLow,
		justification: "External review of the new supplier framework agreement.",
		created:       day(time.June, 1, 13), due: day(time.July, 14, 0), status: entity.StatusPending,
		items: []entity.LineItem{
			item("Contract review (hours)", 36, "300"),
		},
	},
}

// Requests returns fresh copies of the sample purchase requests, newest first
func Requests() []*entity.Request {
	out := make([]*entity.Request, 0, len(samples))
	for _, s := range samples {
		out = append(out, build(s))
	}
	return out
}

func build(s sample) *entity.Request {
	due := s.due
	r := &entity.Request{
		ID: entity.FormatRequestID(s.created.Year(), s.seq),
		Metadata: entity.Metadata{
			Title:         s.title,
			Requester:     s.requester,
			Department:    s.department,
			RequestType:   s.requestType,
			Priority:      s.priority,
			Justification: s.justification,
			DueDate:       &due,
		},
		Status:    s.status,
		Items:     append([]entity.LineItem(nil), s.items...),
		Approvers: entity.NewApprovalChain(DefaultChain(s.department)),
		CreatedAt: s.created,
	}
	r.Amount = entity.SumItems(r.Items)

	at := s.created
	next := func(d time.Duration) time.Time {
		at = at.Add(d)
		return at
	}
	record := func(actor, action, comment string) {
		evt := entity.NewTimelineEvent(at, actor, action, comment)
		// stable ids keep repeated loads of the fixtures comparable
		evt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", r.ID, len(r.Timeline)))).String()
		r.AppendEvent(evt)
	}
	decide := func(idx int, status entity.StepStatus, comment string) {
		decided := at
		r.Approvers[idx].Status = status
		r.Approvers[idx].DecidedAt = &decided
		r.Approvers[idx].Comment = comment
		action := entity.ActionStepApproved
		if status == entity.StepRejected {
			action = entity.ActionStepRejected
		}
		record(r.Approvers[idx].ApproverName, action, comment)
	}

	record(s.requester, entity.ActionCreated, "")

	switch s.status {
	case entity.StatusDraft:
	case entity.StatusPending:
		if s.seq == 1286 {
			next(time.Minute)
			record(entity.SystemActor, "Sent for departmental approval", "")
			next(26 * time.Hour)
			record("Esther Howard", "Requested clarification", "Please specify whether the monitors are required for all team members or just specific roles.")
			next(3 * time.Hour)
			record(s.requester, "Provided clarification", "All team members require the monitors for the new development environment setup.")
			next(20 * time.Hour)
			decide(0, entity.StepApproved, "")
			next(time.Minute)
			record(entity.SystemActor, "Sent for procurement approval", "")
			r.Approvers[1].Status = entity.StepPending
			break
		}
		next(time.Hour)
		record(entity.SystemActor, entity.ActionSubmitted, "")
		next(24 * time.Hour)
		decide(0, entity.StepApproved, "")
		r.Approvers[1].Status = entity.StepPending
	case entity.StatusRejected:
		next(time.Hour)
		record(entity.SystemActor, entity.ActionSubmitted, "")
		next(24 * time.Hour)
		decide(0, entity.StepApproved, "")
		next(24 * time.Hour)
		decide(1, entity.StepRejected, "Budget exceeded for this quarter.")
		record(entity.SystemActor, entity.ActionRejected, "")
	case entity.StatusApproved, entity.StatusCompleted:
		next(time.Hour)
		record(entity.SystemActor, entity.ActionSubmitted, "")
		for idx := range r.Approvers {
			next(24 * time.Hour)
			decide(idx, entity.StepApproved, "")
		}
		record(entity.SystemActor, entity.ActionApproved, "")
		if s.status == entity.StatusCompleted {
			next(72 * time.Hour)
			record(entity.SystemActor, entity.ActionCompleted, "")
		}
	}

	r.UpdatedAt = at
	return r
}
