package auth

import (
	"net/http"
	"strings"

	"github.com/kotlens/kotlens/internal/rest"
	log "github.com/sirupsen/logrus"
)

const (
	apiPrefix      = "/api/"
	authPrefix     = "/api/auth/"
	healthPath     = "/api/health"
	sendReportPath = "/api/admin/send-report"
)

// RequireAuth rejects API calls without a dashboard session. The report
// trigger also accepts the password as a bearer token so it can be called
// from outside the browser.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if !strings.HasPrefix(path, apiPrefix) || path == healthPath || strings.HasPrefix(path, authPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		if path == sendReportPath && a.VerifyBearer(r) {
			next.ServeHTTP(w, r)
			return
		}
		if a.IsAuthenticated(r) {
			next.ServeHTTP(w, r)
			return
		}
		log.Debugf("Unauthenticated request to %s", path)
		rest.WriteError(w, http.StatusUnauthorized, "認証が必要です", "")
	})
}
