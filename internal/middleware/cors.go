package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// OriginPolicy decides whether a browser origin may call the API.
type OriginPolicy interface {
	Allow(origin string) bool
}

// AllowList permits the listed origins; "*" permits everything.
type AllowList []string

func (l AllowList) Allow(origin string) bool {
	for _, o := range l {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// SoftPolicy logs origins rejected by Inner but lets them through anyway.
type SoftPolicy struct {
	Inner  OriginPolicy
	Logger *logrus.Logger
}

func (p SoftPolicy) Allow(origin string) bool {
	if !p.Inner.Allow(origin) {
		p.Logger.Warnf("CORS: origin %q is not allowed, permitting in soft mode", origin)
	}
	return true
}

// CORS sets Access-Control headers for origins accepted by policy and answers
// preflight requests.
func CORS(policy OriginPolicy) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && policy.Allow(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
