// Package tracking turns entity mutations into audit records: field-level
// task_histories rows and a single classified activity_logs row per mutation.
package tracking

import (
	"strconv"
	"time"

	"github.com/raids-lab/tracker/dao/model"
)

// Actor is the user performing a mutation, as reported by the identity layer.
type Actor struct {
	ID   string
	Name string
}

// Canonical field names shared by snapshots, history rows and the
// classification rules below.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldType        = "type"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldAssignedTo  = "assignedTo"
	FieldRemarks     = "remarks"
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
	FieldModule      = "module"
	FieldParent      = "parent"
)

// Snapshot is a point-in-time view of an entity's tracked fields. Fields
// carries the canonical iteration order so diffs are deterministic.
type Snapshot struct {
	Fields []string
	Values map[string]*string
}

// FieldChange is one observed difference between two snapshots.
type FieldChange struct {
	Field string
	Old   *string
	New   *string
}

var taskFields = []string{
	FieldTitle, FieldDescription, FieldType, FieldPriority, FieldStatus,
	FieldAssignedTo, FieldRemarks, FieldStartDate, FieldEndDate,
	FieldModule, FieldParent,
}

// TaskSnapshot captures the tracked fields of a task.
func TaskSnapshot(t *model.Task) Snapshot {
	return Snapshot{
		Fields: taskFields,
		Values: map[string]*string{
			FieldTitle:       ptr(t.Title),
			FieldDescription: t.Description,
			FieldType:        ptr(string(t.Type)),
			FieldPriority:    ptr(string(t.Priority)),
			FieldStatus:      ptr(string(t.Status)),
			FieldAssignedTo:  t.AssignedTo,
			FieldRemarks:     t.Remarks,
			FieldStartDate:   dateptr(t.StartDate),
			FieldEndDate:     dateptr(t.EndDate),
			FieldModule:      ptr(uitoa(t.ModuleID)),
			FieldParent:      uintstr(t.ParentID),
		},
	}
}

var bugSheetFields = []string{
	FieldModule, FieldDescription, FieldStatus, FieldPriority,
	FieldAssignedTo, FieldRemarks,
}

// BugSheetSnapshot captures the tracked fields of a bug sheet.
func BugSheetSnapshot(b *model.BugSheet) Snapshot {
	return Snapshot{
		Fields: bugSheetFields,
		Values: map[string]*string{
			FieldModule:      ptr(b.Module),
			FieldDescription: ptr(b.Description),
			FieldStatus:      ptr(string(b.Status)),
			FieldPriority:    ptr(string(b.Priority)),
			FieldAssignedTo:  b.AssignedTo,
			FieldRemarks:     b.Remarks,
		},
	}
}

// Diff returns the field changes between two snapshots of the same entity,
// in the snapshot's canonical field order.
func Diff(before, after Snapshot) []FieldChange {
	var changes []FieldChange
	for _, f := range after.Fields {
		ov, nv := before.Values[f], after.Values[f]
		if equal(ov, nv) {
			continue
		}
		changes = append(changes, FieldChange{Field: f, Old: ov, New: nv})
	}
	return changes
}

// Mutation is the classified view of one domain operation.
type Mutation struct {
	Created   bool
	Deleted   bool
	Commented bool
	Changes   []FieldChange
}

// Change returns the change for a field, or nil.
func (m Mutation) Change(field string) *FieldChange {
	for i := range m.Changes {
		if m.Changes[i].Field == field {
			return &m.Changes[i]
		}
	}
	return nil
}

type rule struct {
	kind  model.ActionKind
	match func(Mutation) bool
}

// rules is the classification table, evaluated top to bottom; the first
// match wins. Status beats priority, both beat assignment transitions.
// Keeping the priority as data keeps it independently testable.
var rules = []rule{
	{model.ActionCreated, func(m Mutation) bool { return m.Created }},
	{model.ActionDeleted, func(m Mutation) bool { return m.Deleted }},
	{model.ActionStatusChanged, changed(FieldStatus)},
	{model.ActionPriorityChanged, changed(FieldPriority)},
	{model.ActionAssigned, func(m Mutation) bool {
		c := m.Change(FieldAssignedTo)
		return c != nil && c.Old == nil && c.New != nil
	}},
	{model.ActionUnassigned, func(m Mutation) bool {
		c := m.Change(FieldAssignedTo)
		return c != nil && c.Old != nil && c.New == nil
	}},
	{model.ActionCommented, func(m Mutation) bool { return m.Commented }},
}

func changed(field string) func(Mutation) bool {
	return func(m Mutation) bool { return m.Change(field) != nil }
}

// Classify maps a mutation to the single action recorded in the activity
// feed. Anything not matched by the table is a generic update.
func Classify(m Mutation) model.ActionKind {
	for _, r := range rules {
		if r.match(m) {
			return r.kind
		}
	}
	return model.ActionUpdated
}

// Target names the entity an activity row describes. Title is a denormalized
// snapshot taken at mutation time.
type Target struct {
	Type      model.EntityType
	ID        uint
	Title     string
	ProjectID uint
}

// ActivityRow builds the one activity record for a mutation. When the
// classification was driven by a specific field, the row carries that
// field's old/new values; otherwise the field columns stay empty.
func ActivityRow(m Mutation, target Target, actor Actor) model.ActivityLog {
	kind := Classify(m)
	row := model.ActivityLog{
		Action:      kind,
		UserID:      actor.ID,
		UserName:    actor.Name,
		EntityType:  target.Type,
		EntityID:    target.ID,
		EntityTitle: target.Title,
		ProjectID:   target.ProjectID,
	}
	var driving string
	switch kind {
	case model.ActionStatusChanged:
		driving = FieldStatus
	case model.ActionPriorityChanged:
		driving = FieldPriority
	case model.ActionAssigned, model.ActionUnassigned:
		driving = FieldAssignedTo
	}
	if driving != "" {
		if c := m.Change(driving); c != nil {
			row.Field = ptr(c.Field)
			row.OldValue = c.Old
			row.NewValue = c.New
		}
	}
	return row
}

// HistoryRows builds one task_histories row per changed field. Field-level
// granularity is independent of the single-row activity summary.
func HistoryRows(taskID uint, actor Actor, changes []FieldChange) []model.TaskHistory {
	rows := make([]model.TaskHistory, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, model.TaskHistory{
			TaskID:    taskID,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Field:     c.Field,
			OldValue:  c.Old,
			NewValue:  c.New,
		})
	}
	return rows
}

func ptr(s string) *string { return &s }

func uintstr(v *uint) *string {
	if v == nil {
		return nil
	}
	return ptr(uitoa(*v))
}

func dateptr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return ptr(t.UTC().Format(time.RFC3339))
}

func uitoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
