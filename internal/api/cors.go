package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// corsPolicy is the permissive cross-origin policy the daemon serves.
// The API is an internal control surface, so every origin is allowed.
type corsPolicy struct {
	origin  string
	methods string
	headers string
	maxAge  string
}

func defaultCORSPolicy() corsPolicy {
	return corsPolicy{
		origin:  "*",
		methods: strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", "),
		headers: "Content-Type, Authorization, Accept, Origin, X-Requested-With",
		maxAge:  strconv.Itoa(24 * 60 * 60),
	}
}

// middleware stamps the policy headers on every routed request.
func (p corsPolicy) middleware(ctx huma.Context, next func(huma.Context)) {
	p.stamp(ctx.SetHeader)
	if ctx.Method() == http.MethodOptions {
		ctx.SetStatus(http.StatusNoContent)
		return
	}
	next(ctx)
}

// register installs an OPTIONS catch-all on the mux; preflights never
// reach Huma middleware because they match no registered operation.
func (p corsPolicy) register(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		p.stamp(func(k, v string) { w.Header().Set(k, v) })
		w.WriteHeader(http.StatusNoContent)
	})
}

func (p corsPolicy) stamp(set func(key, value string)) {
	set("Access-Control-Allow-Origin", p.origin)
	set("Access-Control-Allow-Methods", p.methods)
	set("Access-Control-Allow-Headers", p.headers)
	set("Access-Control-Max-Age", p.maxAge)
}
