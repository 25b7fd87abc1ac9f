package cron

import (
	"context"
	"os"
	"sync"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

const (
	JobHeartbeat   = "heartbeat"
	JobDailyDigest = "daily_digest"

	appSourceCron = "mailagent-cron"
)

type CronManager struct {
	cfg        *config.Config
	log        logger.Logger
	cron       *cronv3.Cron
	stopCh     chan struct{}
	stopOnce   sync.Once
	jobIDs     map[string]cronv3.EntryID
	dispatcher interfaces.CommandDispatcher
}

func NewCronManager(cfg *config.Config, log logger.Logger, dispatcher interfaces.CommandDispatcher) *CronManager {
	return &CronManager{
		cfg:        cfg,
		log:        log,
		stopCh:     make(chan struct{}),
		jobIDs:     make(map[string]cronv3.EntryID),
		dispatcher: dispatcher,
	}
}

// Start initializes and starts the cron scheduler
func (cm *CronManager) Start() error {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	if err := cm.registerJobs(c); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	return nil
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	cm.stopOnce.Do(func() {
		if cm.cron != nil {
			cm.log.Info("Stopping cron manager")
			ctx := cm.cron.Stop()
			// Wait for jobs to finish
			<-ctx.Done()
		}
		close(cm.stopCh)
	})
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	cronConfig := cm.cfg.CronConfig

	if cronConfig.CronScheduleHeartbeat != "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from %s", hostname)
		})
		if err != nil {
			return err
		}
		cm.jobIDs[JobHeartbeat] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleDailyDigest != "" && cm.dispatcher != nil {
		id, err := c.AddFunc(cronConfig.CronScheduleDailyDigest, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.runDailyDigest()
		})
		if err != nil {
			return err
		}
		cm.jobIDs[JobDailyDigest] = id
		cm.log.Infof("Registered daily digest job with schedule: %s", cronConfig.CronScheduleDailyDigest)
	}

	return nil
}

func (cm *CronManager) runDailyDigest() {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: appSourceCron})

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runDailyDigest")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	query := cm.cfg.CronConfig.CronDailyDigestQuery
	result, err := cm.dispatcher.Run(ctx, query)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Daily digest failed: %v", err)
		return
	}

	tracing.LogObjectAsJson(span, "result", result)
	cm.log.Infof("Daily digest ran %s for intent %s", result.Tool, result.Intent)
}
