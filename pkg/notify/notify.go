// Package notify decides which users are told about a mutation. Rules are
// evaluated independently — one mutation may fan out to several notification
// types — but within one rule a recipient is never notified twice, and the
// acting user is never notified about their own action.
//
// Notification generation is best-effort relative to the primary mutation:
// a failing mention lookup degrades to "that rule is skipped", logged and
// never re-raised.
package notify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/samber/lo"
	"k8s.io/klog/v2"

	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/identity"
	"github.com/raids-lab/tracker/pkg/tracking"
)

type Dispatcher struct {
	resolver identity.Resolver
}

func NewDispatcher(resolver identity.Resolver) *Dispatcher {
	return &Dispatcher{resolver: resolver}
}

// ForTaskChange applies the assignment and status-change rules to a task
// mutation. before is nil when the task was just created.
func (d *Dispatcher) ForTaskChange(before, after *model.Task, projectID uint, actor tracking.Actor) []model.Notification {
	var out []model.Notification

	// Assignment: assignedTo set to a user other than the actor.
	if after.AssignedTo != nil && *after.AssignedTo != actor.ID {
		wasAssigned := before != nil && before.AssignedTo != nil && *before.AssignedTo == *after.AssignedTo
		if !wasAssigned {
			out = append(out, model.Notification{
				ClerkUserID: *after.AssignedTo,
				Type:        model.NotifyAssignment,
				Title:       "Task assigned to you",
				Message:     fmt.Sprintf("%s assigned %q to you", actor.Name, after.Title),
				ProjectID:   &projectID,
				TaskID:      &after.ID,
				ActorID:     actor.ID,
				ActorName:   actor.Name,
			})
		}
	}

	// Status change: notify assignee and reporter, excluding the actor.
	if before != nil && before.Status != after.Status {
		recipients := make([]string, 0, 2)
		if after.AssignedTo != nil {
			recipients = append(recipients, *after.AssignedTo)
		}
		recipients = append(recipients, after.ReporterID)
		for _, uid := range lo.Uniq(recipients) {
			if uid == actor.ID || uid == "" {
				continue
			}
			out = append(out, model.Notification{
				ClerkUserID: uid,
				Type:        model.NotifyStatusChange,
				Title:       "Task status changed",
				Message: fmt.Sprintf("%s moved %q from %s to %s",
					actor.Name, after.Title, before.Status, after.Status),
				ProjectID: &projectID,
				TaskID:    &after.ID,
				ActorID:   actor.ID,
				ActorName: actor.Name,
			})
		}
	}

	return out
}

// ForBugSheetChange applies the assignment and status-change rules to a bug
// sheet mutation. Bug sheets have no reporter field; the creator stands in.
func (d *Dispatcher) ForBugSheetChange(before, after *model.BugSheet, projectID uint, actor tracking.Actor) []model.Notification {
	var out []model.Notification

	if after.AssignedTo != nil && *after.AssignedTo != actor.ID {
		wasAssigned := before != nil && before.AssignedTo != nil && *before.AssignedTo == *after.AssignedTo
		if !wasAssigned {
			out = append(out, model.Notification{
				ClerkUserID: *after.AssignedTo,
				Type:        model.NotifyAssignment,
				Title:       "Bug assigned to you",
				Message:     fmt.Sprintf("%s assigned a bug in %q to you", actor.Name, after.Module),
				ProjectID:   &projectID,
				ActorID:     actor.ID,
				ActorName:   actor.Name,
			})
		}
	}

	if before != nil && before.Status != after.Status {
		recipients := make([]string, 0, 2)
		if after.AssignedTo != nil {
			recipients = append(recipients, *after.AssignedTo)
		}
		recipients = append(recipients, after.CreatorID)
		for _, uid := range lo.Uniq(recipients) {
			if uid == actor.ID || uid == "" {
				continue
			}
			out = append(out, model.Notification{
				ClerkUserID: uid,
				Type:        model.NotifyStatusChange,
				Title:       "Bug status changed",
				Message: fmt.Sprintf("%s moved a bug in %q from %s to %s",
					actor.Name, after.Module, before.Status, after.Status),
				ProjectID: &projectID,
				ActorID:   actor.ID,
				ActorName: actor.Name,
			})
		}
	}

	return out
}

// CommentParent is what the comment rules need to know about the entity the
// comment was written on.
type CommentParent struct {
	Title      string
	AssignedTo *string
	ReporterID *string // nil for bug sheets
	TaskID     *uint
	ProjectID  uint
}

// ForComment applies the comment and mention rules. mentions is the already
// resolved handle-to-id map (see ResolveMentions); the two rules are not
// deduplicated against each other, a user can get both.
func (d *Dispatcher) ForComment(comment *model.Comment, parent CommentParent, mentions map[string]string, actor tracking.Actor) []model.Notification {
	var out []model.Notification

	recipients := make([]string, 0, 2)
	if parent.AssignedTo != nil {
		recipients = append(recipients, *parent.AssignedTo)
	}
	if parent.ReporterID != nil {
		recipients = append(recipients, *parent.ReporterID)
	}
	for _, uid := range lo.Uniq(recipients) {
		if uid == actor.ID || uid == "" {
			continue
		}
		out = append(out, model.Notification{
			ClerkUserID: uid,
			Type:        model.NotifyComment,
			Title:       "New comment",
			Message:     fmt.Sprintf("%s commented on %q", actor.Name, parent.Title),
			ProjectID:   &parent.ProjectID,
			TaskID:      parent.TaskID,
			CommentID:   &comment.ID,
			ActorID:     actor.ID,
			ActorName:   actor.Name,
		})
	}

	for _, uid := range lo.Uniq(lo.Values(mentions)) {
		if uid == actor.ID || uid == "" {
			continue
		}
		out = append(out, model.Notification{
			ClerkUserID: uid,
			Type:        model.NotifyMention,
			Title:       "You were mentioned",
			Message:     fmt.Sprintf("%s mentioned you on %q", actor.Name, parent.Title),
			ProjectID:   &parent.ProjectID,
			TaskID:      parent.TaskID,
			CommentID:   &comment.ID,
			ActorID:     actor.ID,
			ActorName:   actor.Name,
		})
	}

	return out
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9._-]*)`)

// Mentions extracts the distinct @handle tokens from comment text.
func Mentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		handles = append(handles, m[1])
	}
	return lo.Uniq(handles)
}

// ResolveMentions parses and resolves mention handles ahead of the mutation
// transaction. A resolver failure is logged and yields no mentions; the
// primary mutation must never be aborted by this path.
func (d *Dispatcher) ResolveMentions(ctx context.Context, content string) map[string]string {
	handles := Mentions(content)
	if len(handles) == 0 {
		return nil
	}
	resolved, err := d.resolver.Resolve(ctx, handles)
	if err != nil {
		klog.ErrorS(err, "mention resolution failed, skipping mention notifications")
		return nil
	}
	return resolved
}
