package router

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/lamitex/lamitex-crm/internal/http/middleware"
	"github.com/lamitex/lamitex-crm/internal/tenancy"
)

// workspaceQueryParam is accepted for websocket upgrades, where browsers
// cannot set custom headers.
const workspaceQueryParam = "workspace"

// requireWorkspace enforces the workspace header for API requests.
func requireWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID := strings.TrimSpace(r.Header.Get(httpmiddleware.WorkspaceHeader))
		if workspaceID == "" {
			workspaceID = strings.TrimSpace(r.URL.Query().Get(workspaceQueryParam))
		}
		if workspaceID == "" {
			http.Error(w, "missing X-Workspace-Id", http.StatusBadRequest)
			return
		}
		ctx := tenancy.WithWorkspaceID(r.Context(), workspaceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
