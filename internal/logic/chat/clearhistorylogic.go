package chat

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type ClearHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewClearHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ClearHistoryLogic {
	return &ClearHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ClearHistoryLogic) ClearHistory() (*types.ClearHistoryResponse, error) {
	cleared := l.svcCtx.Bridge.Clear()
	l.Infof("cleared %d conversation turns", cleared)
	return &types.ClearHistoryResponse{Cleared: cleared}, nil
}
