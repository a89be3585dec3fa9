package actions

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/automation"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type ListActionsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListActionsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListActionsLogic {
	return &ListActionsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListActionsLogic) ListActions() (*types.ListActionsResponse, error) {
	catalog := automation.Catalog()
	infos := make([]types.ActionInfo, len(catalog))
	for i, desc := range catalog {
		infos[i] = types.ActionInfo{
			Name:        desc.Name,
			Description: desc.Description,
			Params:      desc.Params,
		}
	}
	return &types.ListActionsResponse{Actions: infos}, nil
}
