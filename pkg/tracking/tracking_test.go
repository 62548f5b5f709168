package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raids-lab/tracker/dao/model"
)

func strp(s string) *string { return &s }

func TestDiffDetectsChangedFields(t *testing.T) {
	before := &model.Task{
		Title:    "Checkout flow",
		Type:     model.TaskTypeFeature,
		Priority: model.PriorityMedium,
		Status:   model.StatusTodo,
		ModuleID: 1,
	}
	after := *before
	after.Status = model.StatusInProgress
	after.AssignedTo = strp("user_2")

	changes := Diff(TaskSnapshot(before), TaskSnapshot(&after))
	require.Len(t, changes, 2)

	// canonical field order: status before assignedTo
	assert.Equal(t, FieldStatus, changes[0].Field)
	assert.Equal(t, string(model.StatusTodo), *changes[0].Old)
	assert.Equal(t, string(model.StatusInProgress), *changes[0].New)
	assert.Equal(t, FieldAssignedTo, changes[1].Field)
	assert.Nil(t, changes[1].Old)
	assert.Equal(t, "user_2", *changes[1].New)
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	task := &model.Task{
		Title:    "Checkout flow",
		Type:     model.TaskTypeFeature,
		Priority: model.PriorityMedium,
		Status:   model.StatusTodo,
		ModuleID: 1,
	}
	assert.Empty(t, Diff(TaskSnapshot(task), TaskSnapshot(task)))
}

func TestClassifyFirstMatchWins(t *testing.T) {
	tests := []struct {
		name string
		m    Mutation
		want model.ActionKind
	}{
		{
			name: "created beats everything",
			m: Mutation{Created: true, Changes: []FieldChange{
				{Field: FieldStatus, Old: strp("TODO"), New: strp("DONE")},
			}},
			want: model.ActionCreated,
		},
		{
			name: "deleted",
			m:    Mutation{Deleted: true},
			want: model.ActionDeleted,
		},
		{
			name: "status beats priority",
			m: Mutation{Changes: []FieldChange{
				{Field: FieldPriority, Old: strp("LOW"), New: strp("HIGH")},
				{Field: FieldStatus, Old: strp("TODO"), New: strp("IN_PROGRESS")},
			}},
			want: model.ActionStatusChanged,
		},
		{
			name: "priority beats assignment",
			m: Mutation{Changes: []FieldChange{
				{Field: FieldAssignedTo, Old: nil, New: strp("user_1")},
				{Field: FieldPriority, Old: strp("LOW"), New: strp("HIGH")},
			}},
			want: model.ActionPriorityChanged,
		},
		{
			name: "nil to value is assigned",
			m: Mutation{Changes: []FieldChange{
				{Field: FieldAssignedTo, Old: nil, New: strp("user_1")},
			}},
			want: model.ActionAssigned,
		},
		{
			name: "value to nil is unassigned",
			m: Mutation{Changes: []FieldChange{
				{Field: FieldAssignedTo, Old: strp("user_1"), New: nil},
			}},
			want: model.ActionUnassigned,
		},
		{
			name: "reassignment is a plain update",
			m: Mutation{Changes: []FieldChange{
				{Field: FieldAssignedTo, Old: strp("user_1"), New: strp("user_2")},
			}},
			want: model.ActionUpdated,
		},
		{
			name: "commented",
			m:    Mutation{Commented: true},
			want: model.ActionCommented,
		},
		{
			name: "title only is a plain update",
			m: Mutation{Changes: []FieldChange{
				{Field: FieldTitle, Old: strp("a"), New: strp("b")},
			}},
			want: model.ActionUpdated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.m))
		})
	}
}

func TestActivityRowCarriesDrivingField(t *testing.T) {
	m := Mutation{Changes: []FieldChange{
		{Field: FieldTitle, Old: strp("a"), New: strp("b")},
		{Field: FieldStatus, Old: strp("TODO"), New: strp("DONE")},
	}}
	actor := Actor{ID: "user_1", Name: "Ada"}
	row := ActivityRow(m, Target{Type: model.EntityTask, ID: 7, Title: "b", ProjectID: 3}, actor)

	assert.Equal(t, model.ActionStatusChanged, row.Action)
	require.NotNil(t, row.Field)
	assert.Equal(t, FieldStatus, *row.Field)
	assert.Equal(t, "TODO", *row.OldValue)
	assert.Equal(t, "DONE", *row.NewValue)
	assert.Equal(t, uint(7), row.EntityID)
	assert.Equal(t, uint(3), row.ProjectID)
	assert.Equal(t, "user_1", row.UserID)
}

func TestActivityRowPlainUpdateHasNoField(t *testing.T) {
	m := Mutation{Changes: []FieldChange{
		{Field: FieldTitle, Old: strp("a"), New: strp("b")},
	}}
	row := ActivityRow(m, Target{Type: model.EntityTask, ID: 1, Title: "b", ProjectID: 1}, Actor{ID: "u"})
	assert.Equal(t, model.ActionUpdated, row.Action)
	assert.Nil(t, row.Field)
}

func TestHistoryRowsOnePerChange(t *testing.T) {
	changes := []FieldChange{
		{Field: FieldStatus, Old: strp("TODO"), New: strp("DONE")},
		{Field: FieldPriority, Old: strp("LOW"), New: strp("HIGH")},
	}
	rows := HistoryRows(42, Actor{ID: "user_1", Name: "Ada"}, changes)
	require.Len(t, rows, 2)
	for i, row := range rows {
		assert.Equal(t, uint(42), row.TaskID)
		assert.Equal(t, "user_1", row.ActorID)
		assert.Equal(t, changes[i].Field, row.Field)
	}
}
