package handler

import (
	"net/http"
	"time"

	"github.com/deskbothq/deskbot/internal/httputil"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/types"
)

func HealthCheckHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, &types.HealthResponse{
			Status:    "healthy",
			Version:   svcCtx.Version,
			Provider:  svcCtx.Bridge.ProviderID(),
			Timestamp: time.Now().UTC(),
		})
	}
}
