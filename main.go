package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/raids-lab/tracker/dao"
	"github.com/raids-lab/tracker/dao/query"
	"github.com/raids-lab/tracker/internal"
	"github.com/raids-lab/tracker/internal/handler"
	"github.com/raids-lab/tracker/pkg/config"
	"github.com/raids-lab/tracker/pkg/cronjob"
	"github.com/raids-lab/tracker/pkg/identity"
	"github.com/raids-lab/tracker/pkg/metrics"
	"github.com/raids-lab/tracker/pkg/tracker"
)

// @title Tracker API
// @version 1.0
// @description Multi-tenant project and task tracking backend.
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Provide the session token as 'Bearer ${TOKEN}'
func main() {
	// set global timezone
	time.Local = time.UTC

	// variable changes in local development
	if gin.Mode() == gin.DebugMode {
		if err := godotenv.Load(".debug.env"); err != nil {
			klog.Info("no .debug.env file found, skipping")
		}
	}

	conf := config.GetConfig()

	db := query.GetDB()
	if err := dao.Migrate(db); err != nil {
		klog.Fatalf("migrate database: %v", err)
	}

	retention := cronjob.NewManager(db)
	if err := retention.Seed(conf.Retention.Spec, cronjob.RetentionConfig{
		VisitDays:        conf.Retention.VisitDays,
		NotificationDays: conf.Retention.NotificationDays,
	}); err != nil {
		klog.Fatalf("seed cron jobs: %v", err)
	}
	if err := retention.Start(); err != nil {
		klog.Fatalf("start cron jobs: %v", err)
	}
	defer retention.Stop()

	resolver := identity.NewClerkResolver(conf.Clerk.APIURL, conf.Clerk.SecretKey)
	service := tracker.New(db, resolver)

	backend := internal.Register(&handler.RegisterConfig{Service: service})

	if conf.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			klog.Infof("metrics listening on %s", conf.MetricsAddr)
			if err := http.ListenAndServe(conf.MetricsAddr, mux); err != nil {
				klog.Errorf("metrics server: %v", err)
			}
		}()
	}

	klog.Infof("api listening on %s", conf.ServerAddr)
	if err := backend.R.Run(conf.ServerAddr); err != nil {
		klog.Fatalf("run server: %v", err)
	}
}
