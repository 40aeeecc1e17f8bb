package requests

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type RequestEventRepo interface {
	Append(dbc dbctx.Context, ev *types.RequestEvent) (*types.RequestEvent, error)
	// ListByRequest returns the newest events first; limit <= 0 returns all.
	ListByRequest(dbc dbctx.Context, requestID uint, limit int) ([]*types.RequestEvent, error)
}

type requestEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRequestEventRepo(db *gorm.DB, baseLog *logger.Logger) RequestEventRepo {
	return &requestEventRepo{
		db:  db,
		log: baseLog.With("repo", "RequestEventRepo"),
	}
}

func (r *requestEventRepo) Append(dbc dbctx.Context, ev *types.RequestEvent) (*types.RequestEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if ev == nil || ev.RequestID == 0 || ev.Kind == "" {
		return nil, fmt.Errorf("invalid request event")
	}
	ev.ID = 0
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if len(ev.Detail) == 0 {
		ev.Detail = []byte("{}")
	}
	if err := transaction.WithContext(dbc.Ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *requestEventRepo) ListByRequest(dbc dbctx.Context, requestID uint, limit int) ([]*types.RequestEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RequestEvent
	if requestID == 0 {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("request_id = ?", requestID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
