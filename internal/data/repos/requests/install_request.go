package requests

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/installdesk-backend/internal/domain"
	"github.com/yungbote/installdesk-backend/internal/pkg/dbctx"
	"github.com/yungbote/installdesk-backend/internal/platform/logger"
)

type InstallRequestRepo interface {
	Create(dbc dbctx.Context, req *types.InstallRequest) (*types.InstallRequest, error)
	GetByID(dbc dbctx.Context, id uint) (*types.InstallRequest, error)
	List(dbc dbctx.Context, status types.RequestStatus, limit int) ([]*types.InstallRequest, error)
	// UpdateStatusIfCurrent moves id from -> to only if the row is still in
	// from. It reports whether a row was changed.
	UpdateStatusIfCurrent(dbc dbctx.Context, id uint, from, to types.RequestStatus) (bool, error)
}

type installRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInstallRequestRepo(db *gorm.DB, baseLog *logger.Logger) InstallRequestRepo {
	return &installRequestRepo{
		db:  db,
		log: baseLog.With("repo", "InstallRequestRepo"),
	}
}

func (r *installRequestRepo) Create(dbc dbctx.Context, req *types.InstallRequest) (*types.InstallRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if req == nil {
		return nil, fmt.Errorf("nil install request")
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return nil, fmt.Errorf("install request without ticket id")
	}
	if req.Status == "" {
		req.Status = types.StatusRequested
	}
	req.ID = 0
	if err := transaction.WithContext(dbc.Ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *installRequestRepo) GetByID(dbc dbctx.Context, id uint) (*types.InstallRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 {
		return nil, nil
	}
	var out types.InstallRequest
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *installRequestRepo) List(dbc dbctx.Context, status types.RequestStatus, limit int) ([]*types.InstallRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.InstallRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.InstallRequest
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *installRequestRepo) UpdateStatusIfCurrent(dbc dbctx.Context, id uint, from, to types.RequestStatus) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if !types.CanTransition(from, to) {
		return false, fmt.Errorf("illegal status transition %s -> %s", from, to)
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.InstallRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("status compare-and-set missed", "request_id", id, "from", from, "to", to)
		return false, nil
	}
	return true, nil
}
