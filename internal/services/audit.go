package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/taskboard/internal/metrics"
	"github.com/baharkarakas/taskboard/internal/models"
	repo "github.com/baharkarakas/taskboard/internal/repository"
	"github.com/baharkarakas/taskboard/internal/worker"
)

// Auditor records mutations off the request path. A failed write is logged and dropped.
type Auditor struct {
	r   repo.AuditLogs
	wp  *worker.Pool
	log *slog.Logger
}

func NewAuditor(r repo.AuditLogs, wp *worker.Pool, log *slog.Logger) *Auditor {
	return &Auditor{r: r, wp: wp, log: log}
}

func (a *Auditor) Record(entityType, entityID, actorID, action string, details map[string]any) {
	if a == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Details:    details,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}

	accepted := a.wp.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.r.Create(ctx, entry); err != nil {
			a.log.Error("audit write", "entity", entityType, "action", action, "err", err)
		}
		metrics.AuditQueueDepth.Set(float64(a.wp.Len()))
	})
	if !accepted {
		a.log.Warn("audit dropped, pool stopped", "entity", entityType, "action", action)
		return
	}
	metrics.AuditQueueDepth.Set(float64(a.wp.Len()))
}
