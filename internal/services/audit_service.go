package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const auditLogsLimit = 50

var ErrAuditQueueFull = errors.New("audit queue full")

// AuditLogger records an action without blocking the caller.
type AuditLogger interface {
	LogAction(ctx context.Context, e models.AuditEntry)
}

// AuditQueue transports entries from request handlers to the audit worker.
// Pop reports false when nothing arrived before ctx ended.
type AuditQueue interface {
	Push(ctx context.Context, e models.AuditEntry) error
	Pop(ctx context.Context) (models.AuditEntry, bool, error)
}

type ChannelAuditQueue struct {
	ch chan models.AuditEntry
}

func NewChannelAuditQueue(size int) *ChannelAuditQueue {
	if size <= 0 {
		size = 256
	}
	return &ChannelAuditQueue{ch: make(chan models.AuditEntry, size)}
}

func (q *ChannelAuditQueue) Push(_ context.Context, e models.AuditEntry) error {
	select {
	case q.ch <- e:
		return nil
	default:
		return ErrAuditQueueFull
	}
}

// Pop prefers buffered entries even when ctx is already done, so a cancelled
// context can be used to drain the queue.
func (q *ChannelAuditQueue) Pop(ctx context.Context) (models.AuditEntry, bool, error) {
	select {
	case e := <-q.ch:
		return e, true, nil
	default:
	}
	select {
	case e := <-q.ch:
		return e, true, nil
	case <-ctx.Done():
		return models.AuditEntry{}, false, nil
	}
}

func (q *ChannelAuditQueue) Len() int { return len(q.ch) }

// RedisAuditQueue keeps entries in a redis list (LPUSH / BRPOP).
type RedisAuditQueue struct {
	Client *redis.Client
	Key    string
	Wait   time.Duration
}

func NewRedisAuditQueue(client *redis.Client, key string) *RedisAuditQueue {
	if key == "" {
		key = "audit:logs"
	}
	return &RedisAuditQueue{Client: client, Key: key, Wait: 5 * time.Second}
}

func (q *RedisAuditQueue) Push(ctx context.Context, e models.AuditEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	return q.Client.LPush(ctx, q.Key, raw).Err()
}

func (q *RedisAuditQueue) Pop(ctx context.Context) (models.AuditEntry, bool, error) {
	if ctx.Err() != nil {
		return models.AuditEntry{}, false, nil
	}
	res, err := q.Client.BRPop(ctx, q.Wait, q.Key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return models.AuditEntry{}, false, nil
	case err != nil:
		if ctx.Err() != nil {
			return models.AuditEntry{}, false, nil
		}
		return models.AuditEntry{}, false, err
	case len(res) < 2:
		return models.AuditEntry{}, false, nil
	}
	var e models.AuditEntry
	if err := json.Unmarshal([]byte(res[1]), &e); err != nil {
		return models.AuditEntry{}, false, fmt.Errorf("failed to decode audit entry: %w", err)
	}
	return e, true, nil
}

// AuditRecorder queues entries on LogAction and writes them from Run.
type AuditRecorder struct {
	Queue AuditQueue
	Repo  repositories.AuditRepository
	Now   func() time.Time
}

func NewAuditRecorder(q AuditQueue, repo repositories.AuditRepository) *AuditRecorder {
	return &AuditRecorder{Queue: q, Repo: repo}
}

func (r *AuditRecorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return utils.NowUTC()
}

func (r *AuditRecorder) LogAction(ctx context.Context, e models.AuditEntry) {
	rc := domain.RequestContextFrom(ctx)
	if e.IPAddress == "" {
		e.IPAddress = rc.IP
	}
	if e.UserAgent == "" {
		e.UserAgent = rc.UserAgent
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	if err := r.Queue.Push(context.WithoutCancel(ctx), e); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":     e.Action,
			"target_id":  e.TargetID,
			"request_id": rc.RequestID,
		}).WithError(err).Warn("Audit entry dropped")
	}
}

// Run writes queued entries until ctx is cancelled.
func (r *AuditRecorder) Run(ctx context.Context) {
	logrus.Info("Audit worker started")
	defer logrus.Info("Audit worker stopped")
	for {
		e, ok, err := r.Queue.Pop(ctx)
		if err != nil {
			logrus.WithError(err).Warn("Audit queue read failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		r.write(e)
	}
}

// Close writes whatever is still buffered. ctx bounds the time spent.
func (r *AuditRecorder) Close(ctx context.Context) int {
	done, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	for ctx.Err() == nil {
		e, ok, err := r.Queue.Pop(done)
		if err != nil || !ok {
			break
		}
		r.write(e)
		n++
	}
	if n > 0 {
		logrus.WithField("entries", n).Info("Audit queue drained")
	}
	return n
}

func (r *AuditRecorder) write(e models.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Repo.Insert(ctx, uuid.NewString(), e); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":    e.Action,
			"target_id": e.TargetID,
		}).WithError(err).Error("Failed to write audit log")
	}
}

func (r *AuditRecorder) List(ctx context.Context, f models.AuditFilter, page domain.PageParams) ([]models.AuditLog, domain.Pagination, error) {
	page = page.Normalize(auditLogsLimit)
	items, total, err := r.Repo.List(ctx, f, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return items, domain.NewPagination(page, total), nil
}
