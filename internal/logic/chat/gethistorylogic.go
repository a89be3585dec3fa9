package chat

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type GetHistoryLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetHistoryLogic {
	return &GetHistoryLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetHistoryLogic) GetHistory() (*types.HistoryResponse, error) {
	return &types.HistoryResponse{
		Turns: renderTurns(l.svcCtx.Bridge.History()),
	}, nil
}
