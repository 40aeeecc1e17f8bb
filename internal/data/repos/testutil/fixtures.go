package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/installdesk-backend/internal/domain"
)

func SeedInstallRequest(tb testing.TB, ctx context.Context, db *gorm.DB, software string, status types.RequestStatus) *types.InstallRequest {
	tb.Helper()
	req := &types.InstallRequest{
		UserID:       "u1",
		Software:     software,
		Version:      "1.0",
		TicketID:     "sys-" + software,
		TicketNumber: "INC-" + software,
		Status:       status,
	}
	if err := db.WithContext(ctx).Create(req).Error; err != nil {
		tb.Fatalf("seed install request: %v", err)
	}
	return req
}
