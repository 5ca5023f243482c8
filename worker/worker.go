package worker

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// IJob cron driven job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

type BaseJob struct {
	Cron   *cron.Cron
	OnWork OnWork

	mu        sync.Mutex
	isRunning bool
}

// NewCron cron in location, falls back to UTC for an unknown location
func NewCron(location string) *cron.Cron {
	l, err := time.LoadLocation(location)
	if err != nil {
		l = time.UTC
	}

	return cron.New(cron.WithLocation(l))
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

// Run skips the tick while the previous one is still working
func (job *BaseJob) Run() {
	job.mu.Lock()
	if job.isRunning {
		job.mu.Unlock()
		return
	}
	job.isRunning = true
	job.mu.Unlock()

	defer func() {
		job.mu.Lock()
		job.isRunning = false
		job.mu.Unlock()
	}()

	job.OnWork()
}
