package handler

import (
	"net/http"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

// Aggregated health of the agent and the automation layer. Always 200;
// degradation is reported in the body, not as an HTTP failure.
func GetStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := svcCtx.Status.Snapshot()
		httputil.OkJSON(w, &types.BotStatusResponse{
			AgentReachable:  snap.AgentReachable,
			AutomationReady: snap.AutomationReady,
			LastError:       snap.LastError,
		})
	}
}
