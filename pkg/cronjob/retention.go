// Package cronjob schedules background maintenance. The only job today is
// retention: pruning old visit rows and read notifications so the hot tables
// stay small. Schedules and parameters live in the cron_job_configs table,
// so operators can tune them without a redeploy.
package cronjob

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/raids-lab/tracker/dao/model"
)

const retentionJobName = "retention"

// RetentionConfig is the JSON payload of the retention job row.
type RetentionConfig struct {
	VisitDays        int `json:"visitDays"`
	NotificationDays int `json:"notificationDays"`
}

type Manager struct {
	db        *gorm.DB
	cron      *cron.Cron
	cronMutex sync.Mutex
	entries   map[string]cron.EntryID
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:      db,
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// Seed inserts the retention job row if it does not exist yet.
func (m *Manager) Seed(spec string, cfg RetentionConfig) error {
	var count int64
	err := m.db.Model(&model.CronJobConfig{}).
		Where("name = ?", retentionJobName).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	suspend := false
	return m.db.Create(&model.CronJobConfig{
		Name:    retentionJobName,
		Type:    model.CronJobTypeRetention,
		Spec:    spec,
		Suspend: &suspend,
		Config:  datatypes.JSON(raw),
	}).Error
}

// Start loads every persisted job config and schedules the non-suspended
// ones.
func (m *Manager) Start() error {
	m.cronMutex.Lock()
	defer m.cronMutex.Unlock()

	var configs []model.CronJobConfig
	if err := m.db.Find(&configs).Error; err != nil {
		return err
	}
	for i := range configs {
		cfg := configs[i]
		if cfg.GetSuspend() {
			klog.Infof("cron job %s is suspended, skipping", cfg.Name)
			continue
		}
		f, err := m.newCronJobFunc(cfg.Type, cfg.Config)
		if err != nil {
			klog.ErrorS(err, "skipping cron job", "name", cfg.Name)
			continue
		}
		id, err := m.cron.AddFunc(cfg.Spec, f)
		if err != nil {
			klog.ErrorS(err, "bad cron spec", "name", cfg.Name, "spec", cfg.Spec)
			continue
		}
		m.entries[cfg.Name] = id
		klog.Infof("scheduled cron job %s (%s)", cfg.Name, cfg.Spec)
	}
	m.cron.Start()
	return nil
}

func (m *Manager) Stop() {
	m.cron.Stop()
}

// newCronJobFunc binds a job type to its function.
func (m *Manager) newCronJobFunc(jobType model.CronJobType, jobConfig datatypes.JSON) (cron.FuncJob, error) {
	switch jobType {
	case model.CronJobTypeRetention:
		var cfg RetentionConfig
		if err := json.Unmarshal(jobConfig, &cfg); err != nil {
			return nil, fmt.Errorf("retention config: %w", err)
		}
		return func() {
			if err := m.RunRetention(cfg); err != nil {
				klog.ErrorS(err, "retention run failed")
			}
		}, nil
	default:
		return nil, fmt.Errorf("unsupported cron job type: %s", jobType)
	}
}

// RunRetention prunes visit rows older than VisitDays and read
// notifications older than NotificationDays. Zero or negative day counts
// disable the corresponding prune. Unread notifications are never pruned.
func (m *Manager) RunRetention(cfg RetentionConfig) error {
	now := time.Now().UTC()
	if cfg.VisitDays > 0 {
		cutoff := now.AddDate(0, 0, -cfg.VisitDays)
		res := m.db.Unscoped().
			Where("visited_at < ?", cutoff).
			Delete(&model.UserVisit{})
		if res.Error != nil {
			return fmt.Errorf("prune visits: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			klog.Infof("retention: pruned %d visit rows", res.RowsAffected)
		}
	}
	if cfg.NotificationDays > 0 {
		cutoff := now.AddDate(0, 0, -cfg.NotificationDays)
		res := m.db.
			Where("read = ? AND created_at < ?", true, cutoff).
			Delete(&model.Notification{})
		if res.Error != nil {
			return fmt.Errorf("prune notifications: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			klog.Infof("retention: pruned %d read notifications", res.RowsAffected)
		}
	}
	return nil
}
