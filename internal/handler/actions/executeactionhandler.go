package actions

import (
	"net/http"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/logic/actions"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

// Validate and run one automation action
func ExecuteActionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ExecuteAutomationRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		l := actions.NewExecuteActionLogic(r.Context(), svcCtx)
		resp, err := l.ExecuteAction(&req)
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
