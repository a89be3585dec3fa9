package chat

import (
	"net/http"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/logic/chat"
	"github.com/deskbothq/deskbot/internal/svc"
)

// Drop every turn; IDs keep rising afterwards
func ClearHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := chat.NewClearHistoryLogic(r.Context(), svcCtx)
		resp, err := l.ClearHistory()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
