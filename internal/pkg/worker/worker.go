package worker

import (
	"time"

	"microsocial/internal/pkg/push"
	"microsocial/pkg/logger"

	"go.uber.org/zap"
)

// PushTask is one pending mobile push delivery.
type PushTask struct {
	AccountID string
	Title     string
	Body      string
	Ext       map[string]string
	Retry     int
}

// PushPool delivers push notices off the request path. Failed deliveries
// are retried with a linear backoff, then dropped.
type PushPool struct {
	TaskQueue  chan PushTask
	RetryQueue chan PushTask
	Service    push.PushService
	WorkerNum  int
	MaxRetry   int
}

func NewPushPool(service push.PushService, workerNum int, bufferSize int) *PushPool {
	return &PushPool{
		TaskQueue:  make(chan PushTask, bufferSize),
		RetryQueue: make(chan PushTask, bufferSize/2),
		Service:    service,
		WorkerNum:  workerNum,
		MaxRetry:   3,
	}
}

func (p *PushPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	go p.retryWorker()
	logger.Log.Info("push worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *PushPool) worker(id int) {
	for task := range p.TaskQueue {
		err := p.Service.PushToAccount(task.AccountID, task.Title, task.Body, task.Ext)
		if err == nil {
			continue
		}

		logger.Log.Warn("push delivery failed",
			zap.Int("worker", id),
			zap.String("account", task.AccountID),
			zap.Int("attempt", task.Retry),
			zap.Error(err),
		)

		if task.Retry < p.MaxRetry {
			task.Retry++
			select {
			case p.RetryQueue <- task:
			default:
				p.logDropped(task, err)
			}
		} else {
			p.logDropped(task, err)
		}
	}
}

func (p *PushPool) retryWorker() {
	for task := range p.RetryQueue {
		// Back off before re-queueing.
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logDropped(task, nil)
		}
	}
}

func (p *PushPool) logDropped(task PushTask, err error) {
	logger.Log.Error("push task dropped",
		zap.String("account", task.AccountID),
		zap.String("title", task.Title),
		zap.Int("attempts", task.Retry),
		zap.Error(err),
	)
}

// AddTask enqueues a delivery; drops it when the queue is full rather than
// blocking the caller.
func (p *PushPool) AddTask(task PushTask) {
	select {
	case p.TaskQueue <- task:
	default:
		p.logDropped(task, nil)
	}
}
