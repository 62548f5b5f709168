package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/identity"
	"github.com/raids-lab/tracker/pkg/tracking"
)

func strp(s string) *string { return &s }

var actor = tracking.Actor{ID: "user_actor", Name: "Ada"}

func taskWith(assignee *string, reporter string, status model.TaskStatus) *model.Task {
	return &model.Task{
		Title:      "Checkout flow",
		Status:     status,
		AssignedTo: assignee,
		ReporterID: reporter,
	}
}

func TestAssignmentNotifiesAssignee(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	after := taskWith(strp("user_bob"), actor.ID, model.StatusTodo)

	out := d.ForTaskChange(nil, after, 1, actor)
	require.Len(t, out, 1)
	assert.Equal(t, model.NotifyAssignment, out[0].Type)
	assert.Equal(t, "user_bob", out[0].ClerkUserID)
}

func TestSelfAssignmentIsSuppressed(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	after := taskWith(strp(actor.ID), actor.ID, model.StatusTodo)

	assert.Empty(t, d.ForTaskChange(nil, after, 1, actor))
}

func TestUnchangedAssigneeIsNotRenotified(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	before := taskWith(strp("user_bob"), actor.ID, model.StatusTodo)
	after := taskWith(strp("user_bob"), actor.ID, model.StatusTodo)
	after.Title = "Checkout flow v2"

	assert.Empty(t, d.ForTaskChange(before, after, 1, actor))
}

func TestStatusChangeDedupsAssigneeAndReporter(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	// assignee and reporter are the same user: one notification, not two
	before := taskWith(strp("user_bob"), "user_bob", model.StatusTodo)
	after := taskWith(strp("user_bob"), "user_bob", model.StatusDone)

	out := d.ForTaskChange(before, after, 1, actor)
	require.Len(t, out, 1)
	assert.Equal(t, model.NotifyStatusChange, out[0].Type)
	assert.Equal(t, "user_bob", out[0].ClerkUserID)
}

func TestStatusChangeNotifiesAssigneeAndReporter(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	before := taskWith(strp("user_bob"), "user_carol", model.StatusTodo)
	after := taskWith(strp("user_bob"), "user_carol", model.StatusDone)

	out := d.ForTaskChange(before, after, 1, actor)
	require.Len(t, out, 2)
	got := []string{out[0].ClerkUserID, out[1].ClerkUserID}
	assert.ElementsMatch(t, []string{"user_bob", "user_carol"}, got)
}

func TestStatusChangeExcludesActor(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	before := taskWith(strp(actor.ID), "user_carol", model.StatusTodo)
	after := taskWith(strp(actor.ID), "user_carol", model.StatusDone)

	out := d.ForTaskChange(before, after, 1, actor)
	require.Len(t, out, 1)
	assert.Equal(t, "user_carol", out[0].ClerkUserID)
}

func TestBugSheetAssignment(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	after := &model.BugSheet{
		Module:     "checkout",
		Status:     model.StatusTodo,
		AssignedTo: strp("user_bob"),
	}
	out := d.ForBugSheetChange(nil, after, 1, actor)
	require.Len(t, out, 1)
	assert.Equal(t, model.NotifyAssignment, out[0].Type)
}

func TestCommentAndMentionCanBothReachOneUser(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	comment := &model.Comment{Content: "ping @bob"}
	comment.ID = 9
	taskID := uint(5)
	parent := CommentParent{
		Title:      "Checkout flow",
		AssignedTo: strp("user_bob"),
		TaskID:     &taskID,
		ProjectID:  1,
	}
	mentions := map[string]string{"bob": "user_bob"}

	out := d.ForComment(comment, parent, mentions, actor)
	require.Len(t, out, 2)
	assert.Equal(t, model.NotifyComment, out[0].Type)
	assert.Equal(t, model.NotifyMention, out[1].Type)
	for _, n := range out {
		assert.Equal(t, "user_bob", n.ClerkUserID)
		require.NotNil(t, n.CommentID)
		assert.Equal(t, uint(9), *n.CommentID)
	}
}

func TestCommentExcludesActorFromBothRules(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{})
	comment := &model.Comment{Content: "note to self"}
	parent := CommentParent{
		Title:      "Checkout flow",
		AssignedTo: strp(actor.ID),
		ReporterID: strp(actor.ID),
		ProjectID:  1,
	}
	mentions := map[string]string{"ada": actor.ID}

	assert.Empty(t, d.ForComment(comment, parent, mentions, actor))
}

func TestMentions(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"ping @bob and @carol.m please", []string{"bob", "carol.m"}},
		{"@bob @bob twice", []string{"bob"}},
		{"mail me at a@example.com", []string{"example.com"}},
		{"no mentions here", nil},
	}
	for _, tt := range tests {
		got := Mentions(tt.content)
		if tt.want == nil {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, tt.want, got)
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(_ context.Context, _ []string) (map[string]string, error) {
	return nil, errors.New("directory unavailable")
}

func TestResolveMentionsDegradesOnFailure(t *testing.T) {
	d := NewDispatcher(failingResolver{})
	assert.Nil(t, d.ResolveMentions(context.Background(), "ping @bob"))
}

func TestResolveMentionsStatic(t *testing.T) {
	d := NewDispatcher(identity.StaticResolver{"bob": "user_bob"})
	got := d.ResolveMentions(context.Background(), "ping @bob and @ghost")
	assert.Equal(t, map[string]string{"bob": "user_bob"}, got)
}
