package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Metadata is the descriptive part of a request, editable while in draft
type Metadata struct {
	Title         string     `json:"title" validate:"max=200"`
	Requester     string     `json:"requester" validate:"max=120"`
	Department    string     `json:"department" validate:"max=120"`
	RequestType   string     `json:"requestType" validate:"omitempty,oneof=goods services software hardware subscription"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Justification string     `json:"justification"`
	DueDate       *time.Time `json:"dueDate"`
}

func (m *Metadata) normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Requester = strings.TrimSpace(m.Requester)
	m.Department = NormalizeDepartment(m.Department)
	m.RequestType = strings.ToLower(strings.TrimSpace(m.RequestType))
	m.Priority = strings.ToLower(strings.TrimSpace(m.Priority))
	m.Justification = strings.TrimSpace(m.Justification)
}

// MetadataPatch carries a partial metadata update. Nil fields are left unchanged.
type MetadataPatch struct {
	Title         *string
	Requester     *string
	Department    *string
	RequestType   *string
	Priority      *string
	Justification *string
	DueDate       *time.Time
}

// IsEmpty reports whether the patch changes nothing
func (p MetadataPatch) IsEmpty() bool {
	return p.Title == nil && p.Requester == nil && p.Department == nil &&
		p.RequestType == nil && p.Priority == nil && p.Justification == nil && p.DueDate == nil
}

// Request is a purchase request with its items, approval chain and timeline
type Request struct {
	ID string `json:"id"`
	Metadata
	Status      Status          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Items       []LineItem      `json:"items"`
	Approvers   []ApprovalStep  `json:"approvers"`
	Timeline    []TimelineEvent `json:"timeline"`
	DerivedFrom string          `json:"derivedFrom,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewRequest creates a draft with an undecided approval chain and a creation event.
// Title and requester are required; everything else may be completed before submission.
func NewRequest(meta Metadata, items []LineItem, chain []ChainStage, actor string, now time.Time) (*Request, error) {
	meta.normalize()

	verr := &ValidationError{}
	if meta.Title == "" {
		verr.Add("title", "title is required")
	}
	if meta.Requester == "" {
		verr.Add("requester", "requester is required")
	}
	if err := validateStruct(meta); err != nil {
		if fieldErr, ok := err.(*ValidationError); ok {
			for field, msg := range fieldErr.Fields {
				verr.Add(field, msg)
			}
		} else {
			return nil, err
		}
	}
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			addItemErrors(verr, idx, err)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if actor == "" {
		actor = meta.Requester
	}

	now = now.UTC()
	r := &Request{
		Metadata:  meta,
		Status:    StatusDraft,
		Items:     append([]LineItem{}, items...),
		Approvers: NewApprovalChain(chain),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.recalculate()
	r.AppendEvent(NewTimelineEvent(now, actor, ActionCreated, ""))
	return r, nil
}

// IsEditable reports whether metadata and items may still change
func (r *Request) IsEditable() bool {
	return r.Status == StatusDraft
}

func (r *Request) ensureEditable() error {
	if !r.IsEditable() {
		return NewValidationError("status", "request can only be edited while in draft")
	}
	return nil
}

// ApplyMetadata applies a partial metadata update to a draft
func (r *Request) ApplyMetadata(patch MetadataPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := r.ensureEditable(); err != nil {
		return err
	}

	next := r.Metadata
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Requester != nil {
		next.Requester = *patch.Requester
	}
	if patch.Department != nil {
		next.Department = *patch.Department
	}
	if patch.RequestType != nil {
		next.RequestType = *patch.RequestType
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Justification != nil {
		next.Justification = *patch.Justification
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		next.DueDate = &due
	}
	next.normalize()

	verr := &ValidationError{}
	if patch.Title != nil && next.Title == "" {
		verr.Add("title", "title must not be blank")
	}
	if patch.Requester != nil && next.Requester == "" {
		verr.Add("requester", "requester must not be blank")
	}
	if err := validateStruct(next); err != nil {
		fieldErr, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		for field, msg := range fieldErr.Fields {
			verr.Add(field, msg)
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	r.Metadata = next
	return nil
}

// AddItem appends a line item and recomputes the amount
func (r *Request) AddItem(item LineItem) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	item.Description = strings.TrimSpace(item.Description)
	if err := item.Validate(); err != nil {
		return err
	}
	r.Items = append(r.Items, item)
	r.recalculate()
	return nil
}

// RemoveItem removes the item at index and recomputes the amount
func (r *Request) RemoveItem(index int) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	if index < 0 || index >= len(r.Items) {
		return NewValidationError("index", "line item index out of range")
	}
	r.Items = append(r.Items[:index:index], r.Items[index+1:]...)
	r.recalculate()
	return nil
}

// ReplaceItems swaps the whole item list and recomputes the amount
func (r *Request) ReplaceItems(items []LineItem) error {
	if err := r.ensureEditable(); err != nil {
		return err
	}
	verr := &ValidationError{}
	normalized := make([]LineItem, 0, len(items))
	for idx, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		if err := item.Validate(); err != nil {
			addItemErrors(verr, idx, err)
		}
		normalized = append(normalized, item)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	r.Items = normalized
	r.recalculate()
	return nil
}

// ValidateForSubmission checks that a draft carries everything an approver needs
func (r *Request) ValidateForSubmission() error {
	return validateStruct(submission{
		Title:       r.Title,
		Requester:   r.Requester,
		Department:  r.Department,
		RequestType: r.RequestType,
		Priority:    r.Priority,
		Items:       r.Items,
	})
}

// AppendEvent adds an event to the end of the timeline
func (r *Request) AppendEvent(evt TimelineEvent) {
	r.Timeline = append(r.Timeline, evt)
}

// DeriveDraft creates a fresh draft carrying the metadata and items of r.
// The returned draft has no ID; the store assigns one on create.
func (r *Request) DeriveDraft(actor string, now time.Time) *Request {
	now = now.UTC()
	draft := &Request{
		Metadata:    r.Metadata,
		Status:      StatusDraft,
		Items:       append([]LineItem{}, r.Items...),
		Approvers:   NewApprovalChain(Stages(r.Approvers)),
		DerivedFrom: r.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.DueDate != nil {
		due := *r.DueDate
		draft.DueDate = &due
	}
	draft.recalculate()
	draft.AppendEvent(NewTimelineEvent(now, actor, ActionCreatedFromPrev, "Derived from "+r.ID))
	return draft
}

// Clone returns a deep copy of the request
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	if r.DueDate != nil {
		due := *r.DueDate
		c.DueDate = &due
	}
	c.Items = append([]LineItem(nil), r.Items...)
	c.Approvers = make([]ApprovalStep, len(r.Approvers))
	for i, step := range r.Approvers {
		if step.DecidedAt != nil {
			at := *step.DecidedAt
			step.DecidedAt = &at
		}
		c.Approvers[i] = step
	}
	c.Timeline = make([]TimelineEvent, len(r.Timeline))
	for i, evt := range r.Timeline {
		if evt.Comment != nil {
			comment := *evt.Comment
			evt.Comment = &comment
		}
		c.Timeline[i] = evt
	}
	return &c
}

func (r *Request) recalculate() {
	r.Amount = SumItems(r.Items)
}

func addItemErrors(verr *ValidationError, idx int, err error) {
	fieldErr, ok := err.(*ValidationError)
	if !ok {
		verr.Add(itemField(idx, ""), err.Error())
		return
	}
	for field, msg := range fieldErr.Fields {
		verr.Add(itemField(idx, field), msg)
	}
}

func itemField(idx int, field string) string {
	name := "items[" + strconv.Itoa(idx) + "]"
	if field == "" {
		return name
	}
	return name + "." + field
}
