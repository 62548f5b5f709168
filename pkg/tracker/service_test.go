package tracker

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao"
	"github.com/raids-lab/tracker/dao/model"
	"github.com/raids-lab/tracker/pkg/identity"
)

var (
	ctx   = context.Background()
	alice = Actor{ID: "user_alice", Name: "Alice"}
	carol = Actor{ID: "user_carol", Name: "Carol"}
)

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

type fixture struct {
	svc     *Service
	db      *gorm.DB
	project *model.Project
	app     *model.App
	module  *model.Module
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dao.AutoMigrate(db))

	svc := New(db, identity.StaticResolver{"bob": "user_bob"})

	org, err := svc.CreateOrganization(ctx, "org_acme", "Acme")
	require.NoError(t, err)
	project, err := svc.CreateProject(ctx, org.ID, CreateProjectInput{Name: "Website"}, alice)
	require.NoError(t, err)
	app, err := svc.CreateApp(ctx, project.ID, CreateAppInput{Name: "Storefront"}, alice)
	require.NoError(t, err)
	module, err := svc.CreateModule(ctx, app.ID, "Payments", alice)
	require.NoError(t, err)

	return &fixture{svc: svc, db: db, project: project, app: app, module: module}
}

func (f *fixture) createTask(t *testing.T, in CreateTaskInput) *model.Task {
	t.Helper()
	task, err := f.svc.CreateTask(ctx, f.module.ID, in, alice)
	require.NoError(t, err)
	return task
}

func (f *fixture) taskActivity(t *testing.T, taskID uint) []model.ActivityLog {
	t.Helper()
	var rows []model.ActivityLog
	require.NoError(t, f.db.
		Where("entity_type = ? AND entity_id = ?", model.EntityTask, taskID).
		Order("id ASC").Find(&rows).Error)
	return rows
}

func (f *fixture) notificationsFor(t *testing.T, userID string) []model.Notification {
	t.Helper()
	var rows []model.Notification
	require.NoError(t, f.db.Where("clerk_user_id = ?", userID).Order("id ASC").Find(&rows).Error)
	return rows
}

func TestTaskCodesAreSequentialAndNeverReused(t *testing.T) {
	f := newFixture(t)

	t1 := f.createTask(t, CreateTaskInput{Title: "first"})
	t2 := f.createTask(t, CreateTaskInput{Title: "second"})
	assert.Equal(t, "PAYMEN-1", *t1.TaskCode)
	assert.Equal(t, "PAYMEN-2", *t2.TaskCode)

	require.NoError(t, f.svc.DeleteTask(ctx, t2.ID, alice))

	// the deleted code stays burned
	t3 := f.createTask(t, CreateTaskInput{Title: "third"})
	assert.Equal(t, "PAYMEN-3", *t3.TaskCode)
}

func TestCreateTaskDefaultsAndOrder(t *testing.T) {
	f := newFixture(t)

	t1 := f.createTask(t, CreateTaskInput{Title: "first"})
	t2 := f.createTask(t, CreateTaskInput{Title: "second"})

	assert.Equal(t, model.TaskTypeFeature, t1.Type)
	assert.Equal(t, model.PriorityMedium, t1.Priority)
	assert.Equal(t, model.StatusTodo, t1.Status)
	assert.Equal(t, alice.ID, t1.ReporterID)
	assert.Equal(t, 0, t1.SortOrder)
	assert.Equal(t, 1, t2.SortOrder)

	rows := f.taskActivity(t, t1.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ActionCreated, rows[0].Action)
	assert.Equal(t, f.project.ID, rows[0].ProjectID)
}

func TestCreateSubtaskParentMustShareModule(t *testing.T) {
	f := newFixture(t)
	parent := f.createTask(t, CreateTaskInput{Title: "parent"})

	other, err := f.svc.CreateModule(ctx, f.app.ID, "Auth", alice)
	require.NoError(t, err)

	_, err = f.svc.CreateTask(ctx, other.ID, CreateTaskInput{
		Title:    "orphan",
		ParentID: &parent.ID,
	}, alice)
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	// the failed create left nothing behind
	var count int64
	require.NoError(t, f.db.Model(&model.Task{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	reloaded, err := f.svc.ListModules(ctx, f.app.ID)
	require.NoError(t, err)
	for _, m := range reloaded {
		if m.ID == other.ID {
			assert.EqualValues(t, 0, m.TaskCounter, "failed create must not burn a code")
		}
	}
}

func TestUpdateTaskWritesHistoryAndOneActivityRow(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "checkout"})

	status := model.StatusInProgress
	prio := model.PriorityHigh
	_, err := f.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{
		Status:   &status,
		Priority: &prio,
	}, carol)
	require.NoError(t, err)

	var history []model.TaskHistory
	require.NoError(t, f.db.Where("task_id = ?", task.ID).Find(&history).Error)
	assert.Len(t, history, 2)

	rows := f.taskActivity(t, task.ID)
	require.Len(t, rows, 2) // CREATED + the update
	last := rows[len(rows)-1]
	assert.Equal(t, model.ActionStatusChanged, last.Action)
	require.NotNil(t, last.OldValue)
	assert.Equal(t, string(model.StatusTodo), *last.OldValue)
	assert.Equal(t, string(model.StatusInProgress), *last.NewValue)
	assert.Equal(t, carol.ID, last.UserID)
}

func TestUpdateTaskNoopWritesNothing(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "checkout"})

	_, err := f.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Title: strp("checkout")}, carol)
	require.NoError(t, err)

	var history int64
	require.NoError(t, f.db.Model(&model.TaskHistory{}).Where("task_id = ?", task.ID).Count(&history).Error)
	assert.Zero(t, history)
	assert.Len(t, f.taskActivity(t, task.ID), 1) // only CREATED
}

func TestUnassignIsClassified(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "checkout", AssignedTo: strp("user_bob")})

	_, err := f.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Unassign: true}, alice)
	require.NoError(t, err)

	rows := f.taskActivity(t, task.ID)
	assert.Equal(t, model.ActionUnassigned, rows[len(rows)-1].Action)
}

func TestDeleteTaskCascadesAndNormalizes(t *testing.T) {
	f := newFixture(t)
	t1 := f.createTask(t, CreateTaskInput{Title: "first"})
	t2 := f.createTask(t, CreateTaskInput{Title: "second"})
	t3 := f.createTask(t, CreateTaskInput{Title: "third"})

	sub, err := f.svc.CreateTask(ctx, f.module.ID, CreateTaskInput{
		Title:    "nested",
		ParentID: &t2.ID,
	}, alice)
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, TaskTarget(sub.ID), "will vanish", alice)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTask(ctx, t2.ID, alice))

	var tasks, comments, history int64
	require.NoError(t, f.db.Model(&model.Task{}).Where("id IN ?", []uint{t2.ID, sub.ID}).Count(&tasks).Error)
	require.NoError(t, f.db.Model(&model.Comment{}).Where("task_id = ?", sub.ID).Count(&comments).Error)
	require.NoError(t, f.db.Model(&model.TaskHistory{}).Where("task_id IN ?", []uint{t2.ID, sub.ID}).Count(&history).Error)
	assert.Zero(t, tasks)
	assert.Zero(t, comments)
	assert.Zero(t, history)

	// remaining root siblings are densely renumbered
	var rest []model.Task
	require.NoError(t, f.db.Where("module_id = ? AND parent_id IS NULL", f.module.ID).
		Order("sort_order ASC").Find(&rest).Error)
	require.Len(t, rest, 2)
	assert.Equal(t, t1.ID, rest[0].ID)
	assert.Equal(t, 0, rest[0].SortOrder)
	assert.Equal(t, t3.ID, rest[1].ID)
	assert.Equal(t, 1, rest[1].SortOrder)
}

func TestMoveTaskAcrossModulesCarriesSubtree(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "parent"})
	sub, err := f.svc.CreateTask(ctx, f.module.ID, CreateTaskInput{
		Title:    "child",
		ParentID: &task.ID,
	}, alice)
	require.NoError(t, err)

	dest, err := f.svc.CreateModule(ctx, f.app.ID, "Auth", alice)
	require.NoError(t, err)

	moved, err := f.svc.MoveTask(ctx, task.ID, MoveTaskInput{ModuleID: &dest.ID}, alice)
	require.NoError(t, err)
	assert.Equal(t, dest.ID, moved.ModuleID)
	assert.Equal(t, "PAYMEN-1", *moved.TaskCode, "code keeps the original slug")

	var child model.Task
	require.NoError(t, f.db.First(&child, sub.ID).Error)
	assert.Equal(t, dest.ID, child.ModuleID)
}

func TestMoveTaskToIndex(t *testing.T) {
	f := newFixture(t)
	t1 := f.createTask(t, CreateTaskInput{Title: "first"})
	t2 := f.createTask(t, CreateTaskInput{Title: "second"})
	t3 := f.createTask(t, CreateTaskInput{Title: "third"})

	_, err := f.svc.MoveTask(ctx, t3.ID, MoveTaskInput{Order: intp(0)}, alice)
	require.NoError(t, err)

	tasks, err := f.svc.ListTasks(ctx, f.module.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []uint{t3.ID, t1.ID, t2.ID}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{tasks[0].SortOrder, tasks[1].SortOrder, tasks[2].SortOrder})
}

func TestMoveTaskCycleRejected(t *testing.T) {
	f := newFixture(t)
	parent := f.createTask(t, CreateTaskInput{Title: "parent"})
	child, err := f.svc.CreateTask(ctx, f.module.ID, CreateTaskInput{
		Title:    "child",
		ParentID: &parent.ID,
	}, alice)
	require.NoError(t, err)

	_, err = f.svc.MoveTask(ctx, parent.ID, MoveTaskInput{ParentID: &child.ID}, alice)
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	_, err = f.svc.MoveTask(ctx, parent.ID, MoveTaskInput{ParentID: &parent.ID}, alice)
	assert.ErrorIs(t, err, ErrInvalidHierarchy)
}

func TestMoveSubtaskCannotLeaveParentBehind(t *testing.T) {
	f := newFixture(t)
	parent := f.createTask(t, CreateTaskInput{Title: "parent"})
	child, err := f.svc.CreateTask(ctx, f.module.ID, CreateTaskInput{
		Title:    "child",
		ParentID: &parent.ID,
	}, alice)
	require.NoError(t, err)

	dest, err := f.svc.CreateModule(ctx, f.app.ID, "Auth", alice)
	require.NoError(t, err)

	_, err = f.svc.MoveTask(ctx, child.ID, MoveTaskInput{ModuleID: &dest.ID}, alice)
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	// explicit MakeRoot detaches first, then the move is legal
	moved, err := f.svc.MoveTask(ctx, child.ID, MoveTaskInput{ModuleID: &dest.ID, MakeRoot: true}, alice)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, dest.ID, moved.ModuleID)
}

func TestAssignmentNotificationPersisted(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "checkout"})

	_, err := f.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{AssignedTo: strp("user_bob")}, alice)
	require.NoError(t, err)

	rows := f.notificationsFor(t, "user_bob")
	require.Len(t, rows, 1)
	assert.Equal(t, model.NotifyAssignment, rows[0].Type)
	assert.False(t, rows[0].Read)
	require.NotNil(t, rows[0].TaskID)
	assert.Equal(t, task.ID, *rows[0].TaskID)
}

func TestSelfAssignmentWritesNoNotification(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "checkout"})

	_, err := f.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{AssignedTo: strp(alice.ID)}, alice)
	require.NoError(t, err)
	assert.Empty(t, f.notificationsFor(t, alice.ID))
}

func TestCommentNotifiesAssigneeAndMentions(t *testing.T) {
	f := newFixture(t)
	// reporter is alice (the commenter), so only the assignee and the
	// mentioned user should hear about it
	task := f.createTask(t, CreateTaskInput{Title: "checkout", AssignedTo: strp(carol.ID)})

	comment, err := f.svc.AddComment(ctx, TaskTarget(task.ID), "ping @bob", alice)
	require.NoError(t, err)
	require.NotNil(t, comment.TaskID)

	carolRows := f.notificationsFor(t, carol.ID)
	bobRows := f.notificationsFor(t, "user_bob")
	// carol: ASSIGNMENT from create + COMMENT
	require.Len(t, carolRows, 2)
	assert.Equal(t, model.NotifyComment, carolRows[1].Type)
	require.Len(t, bobRows, 1)
	assert.Equal(t, model.NotifyMention, bobRows[0].Type)

	rows := f.taskActivity(t, task.ID)
	assert.Equal(t, model.ActionCommented, rows[len(rows)-1].Action)
}

func TestCommentTargetUnset(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddComment(ctx, CommentTarget{}, "lost", alice)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStarTwiceIsConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StarProject(ctx, alice.ID, f.project.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.StarProject(ctx, alice.ID, f.project.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)

	// starring an app of the same project is a different star
	_, err = f.svc.StarProject(ctx, alice.ID, f.project.ID, &f.app.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.UnstarProject(ctx, alice.ID, f.project.ID, nil))
	assert.ErrorIs(t, f.svc.UnstarProject(ctx, alice.ID, f.project.ID, nil), ErrNotFound)
}

func TestRecordVisitChecksAppProject(t *testing.T) {
	f := newFixture(t)
	org, err := f.svc.CreateOrganization(ctx, "org_other", "Other")
	require.NoError(t, err)
	p2, err := f.svc.CreateProject(ctx, org.ID, CreateProjectInput{Name: "Elsewhere"}, alice)
	require.NoError(t, err)

	_, err = f.svc.RecordVisit(ctx, alice.ID, p2.ID, &f.app.ID)
	assert.ErrorIs(t, err, ErrInvalidHierarchy)

	visit, err := f.svc.RecordVisit(ctx, alice.ID, f.project.ID, &f.app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ViewApp, visit.ViewType)
	assert.Equal(t, f.project.Name, visit.ProjectName)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "checkout", AssignedTo: strp("user_bob")})
	_ = task

	rows := f.notificationsFor(t, "user_bob")
	require.Len(t, rows, 1)

	// someone else cannot mark it
	assert.ErrorIs(t, f.svc.MarkRead(ctx, carol.ID, rows[0].ID), ErrNotFound)
	require.NoError(t, f.svc.MarkRead(ctx, "user_bob", rows[0].ID))

	listed, total, err := f.svc.ListNotifications(ctx, "user_bob", NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, listed)
}

func TestDeleteModuleCascades(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "doomed"})
	_, err := f.svc.AddComment(ctx, TaskTarget(task.ID), "doomed too", alice)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteModule(ctx, f.module.ID, alice))

	var tasks, comments int64
	require.NoError(t, f.db.Model(&model.Task{}).Where("module_id = ?", f.module.ID).Count(&tasks).Error)
	require.NoError(t, f.db.Model(&model.Comment{}).Where("task_id = ?", task.ID).Count(&comments).Error)
	assert.Zero(t, tasks)
	assert.Zero(t, comments)
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, CreateTaskInput{Title: "doomed"})
	_, err := f.svc.StarProject(ctx, alice.ID, f.project.ID, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProject(ctx, f.project.ID))

	var apps, modules, tasks, stars, activity int64
	require.NoError(t, f.db.Model(&model.App{}).Where("project_id = ?", f.project.ID).Count(&apps).Error)
	require.NoError(t, f.db.Model(&model.Module{}).Where("app_id = ?", f.app.ID).Count(&modules).Error)
	require.NoError(t, f.db.Model(&model.Task{}).Where("id = ?", task.ID).Count(&tasks).Error)
	require.NoError(t, f.db.Model(&model.UserStarred{}).Where("project_id = ?", f.project.ID).Count(&stars).Error)
	require.NoError(t, f.db.Model(&model.ActivityLog{}).Where("project_id = ?", f.project.ID).Count(&activity).Error)
	assert.Zero(t, apps)
	assert.Zero(t, modules)
	assert.Zero(t, tasks)
	assert.Zero(t, stars)
	assert.Zero(t, activity)
}

func TestBugSheetLifecycle(t *testing.T) {
	f := newFixture(t)

	bug, err := f.svc.CreateBugSheet(ctx, f.app.ID, CreateBugSheetInput{
		Module:      "checkout",
		Description: "totals are off by one",
		AssignedTo:  strp("user_bob"),
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, bug.Status)
	assert.Equal(t, model.PriorityMedium, bug.Priority)
	require.Len(t, f.notificationsFor(t, "user_bob"), 1)

	done := model.StatusDone
	updated, err := f.svc.UpdateBugSheet(ctx, bug.ID, UpdateBugSheetInput{Status: &done}, carol)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)

	// bug sheets get activity rows but no field-level history
	var rows []model.ActivityLog
	require.NoError(t, f.db.
		Where("entity_type = ? AND entity_id = ?", model.EntityBugSheet, bug.ID).
		Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, model.ActionStatusChanged, rows[1].Action)

	var history int64
	require.NoError(t, f.db.Model(&model.TaskHistory{}).Count(&history).Error)
	assert.Zero(t, history)

	require.NoError(t, f.svc.DeleteBugSheet(ctx, bug.ID, alice))
	_, err = f.svc.ListComments(ctx, BugSheetTarget(bug.ID))
	require.NoError(t, err)
}

func TestActivityPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.createTask(t, CreateTaskInput{Title: "task"})
	}

	rows, total, err := f.svc.ListActivity(ctx, f.project.ID, Pagination{Page: 0, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 7, total) // project + module CREATED, then 5 tasks
	assert.Len(t, rows, 3)

	rest, _, err := f.svc.ListActivity(ctx, f.project.ID, Pagination{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, rest, 3)
	assert.NotEqual(t, rows[0].ID, rest[0].ID)
}
