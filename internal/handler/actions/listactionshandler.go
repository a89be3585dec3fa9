package actions

import (
	"net/http"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/logic/actions"
	"github.com/deskbothq/deskbot/internal/svc"
)

// Enumerate the automation catalog
func ListActionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := actions.NewListActionsLogic(r.Context(), svcCtx)
		resp, err := l.ListActions()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
