package tracker

import (
	"context"

	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
)

// NotificationFilter narrows a recipient's notification list.
type NotificationFilter struct {
	UnreadOnly bool
	Pagination
}

// ListNotifications returns a user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, clerkUserID string, f NotificationFilter) ([]model.Notification, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("clerk_user_id = ?", clerkUserID)
	if f.UnreadOnly {
		db = db.Where("read = ?", false)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, 0, mapDBErr(err, "count notifications")
	}
	var rows []model.Notification
	err := db.Order("created_at DESC, id DESC").
		Limit(f.limit()).Offset(f.offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, mapDBErr(err, "list notifications")
	}
	return rows, count, nil
}

// MarkRead flags one notification as read. Scoped to the recipient, so a
// user cannot touch someone else's rows; a foreign or missing id is
// NotFound either way.
func (s *Service) MarkRead(ctx context.Context, clerkUserID string, notificationID uint) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&model.Notification{}).
			Where("id = ? AND clerk_user_id = ?", notificationID, clerkUserID).
			Update("read", true)
		if res.Error != nil {
			return mapDBErr(res.Error, "mark read")
		}
		if res.RowsAffected == 0 {
			return wrapf(ErrNotFound, "notification %d", notificationID)
		}
		return nil
	})
}

// MarkAllRead flags every unread notification of a user and reports how
// many were flipped.
func (s *Service) MarkAllRead(ctx context.Context, clerkUserID string) (int64, error) {
	var n int64
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&model.Notification{}).
			Where("clerk_user_id = ? AND read = ?", clerkUserID, false).
			Update("read", true)
		if res.Error != nil {
			return mapDBErr(res.Error, "mark all read")
		}
		n = res.RowsAffected
		return nil
	})
	return n, err
}
