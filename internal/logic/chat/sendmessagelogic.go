package chat

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/deskbothq/deskbot/internal/agent"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

type SendMessageLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// Send a user message through the bridge
func NewSendMessageLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SendMessageLogic {
	return &SendMessageLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SendMessageLogic) SendMessage(req *types.SendMessageRequest) (*types.SendMessageResponse, error) {
	reply, turns, err := l.svcCtx.Bridge.Send(l.ctx, req.Message)
	if err != nil {
		l.Errorf("send message: %v", err)
		return nil, err
	}

	return &types.SendMessageResponse{
		Reply: reply,
		Turns: renderTurns(turns),
	}, nil
}

func renderTurns(turns []agent.Turn) []types.Turn {
	out := make([]types.Turn, len(turns))
	for i, t := range turns {
		out[i] = types.Turn{
			ID:        t.ID,
			Role:      t.Role,
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		}
	}
	return out
}
