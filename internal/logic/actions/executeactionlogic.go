package actions

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/automation"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type ExecuteActionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Decode, validate, and dispatch one automation action
func NewExecuteActionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ExecuteActionLogic {
	return &ExecuteActionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ExecuteActionLogic) ExecuteAction(req *types.ExecuteAutomationRequest) (*types.ExecuteAutomationResponse, error) {
	action, err := automation.Decode(req.Action, req.Params, l.svcCtx.Bounds)
	if err != nil {
		return nil, err
	}

	result, err := l.svcCtx.Executor.Execute(l.ctx, action)
	if err != nil {
		l.Errorf("execute %s: %v", req.Action, err)
		return nil, err
	}

	return &types.ExecuteAutomationResponse{
		Action:  action.Name(),
		Content: result.Content,
		Payload: result.Payload,
	}, nil
}
