package chat

import (
	"net/http"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/logic/chat"
	"github.com/deskbothq/deskbot/internal/svc"
)

// Full conversation log in order
func GetHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := chat.NewGetHistoryLogic(r.Context(), svcCtx)
		resp, err := l.GetHistory()
		if err != nil {
			httputil.Error(w, err)
		} else {
			httputil.OkJSON(w, resp)
		}
	}
}
