package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const lockKey = "lock:reconcile"

// Locker guards a run across processes. Acquire reports false when another holder has the lock.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// RedisLocker is a single-instance Redis lock: SET NX with a token, released only by its owner.
type RedisLocker struct {
	Client *redis.Client
	Logger *zap.Logger
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.New().String()
	ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.Logger.Warn("Failed to release reconcile lock", zap.Error(err))
		}
	}
	return release, true, nil
}

// Scheduler owns the cron loop that runs the job. Overlapping runs in this process are skipped;
// the Locker keeps other processes out.
type Scheduler struct {
	cron    *cron.Cron
	job     *Job
	locker  Locker
	timeout time.Duration
	logger  *zap.Logger
}

// NewScheduler registers job on spec, a robfig cron expression such as "@every 5m".
// locker may be nil when only one instance runs.
func NewScheduler(job *Job, spec string, locker Locker, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		job:     job,
		locker:  locker,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Reconciliation scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for a run in progress, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Reconciliation scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Reconciliation scheduler stop timed out")
	}
}

// RunOnce performs a single guarded run.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, lockKey, s.timeout)
		if err != nil {
			s.logger.Error("Failed to acquire reconcile lock", zap.Error(err))
			return
		}
		if !ok {
			s.logger.Debug("Reconciliation already running elsewhere")
			return
		}
		defer release()
	}
	s.job.Run(ctx)
}
