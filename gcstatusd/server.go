// Package gcstatusd serves a small diagnostic HTTP surface over the
// collector's global counters, the permissible heap-size schedule, and a
// Prometheus scrape endpoint — the status/debug daemon a long-running
// fleet of processes needs beside the collector itself, written directly
// against fasthttp's own server API.
package gcstatusd

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/beamforge/procgc/gcstats"
	"github.com/beamforge/procgc/sizetab"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes /info, /heap_sizes, and /metrics over fasthttp.
type Server struct {
	addr   string
	srv    *fasthttp.Server
	metric fasthttp.RequestHandler
}

// New builds a status server listening on addr. Call Serve to run it.
func New(addr string) *Server {
	s := &Server{addr: addr}
	s.metric = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(
		gcstats.Registry(), promhttp.HandlerOpts{}))
	s.srv = &fasthttp.Server{Handler: s.handle, Name: "gcstatusd"}
	return s
}

// Serve blocks, accepting connections until the listener errors.
func (s *Server) Serve() error {
	return s.srv.ListenAndServe(s.addr)
}

// Shutdown stops accepting new connections and waits for in-flight ones.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/info":
		s.writeJSON(ctx, gcstats.Snapshot())
	case "/heap_sizes":
		s.writeJSON(ctx, sizetab.Table())
	case "/metrics":
		s.metric(ctx)
	default:
		ctx.SetStatusCode(http.StatusNotFound)
	}
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, v any) {
	b, err := jsonAPI.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}
