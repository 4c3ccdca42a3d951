package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neuralnomads/nomadhost/internal/events"
	"github.com/neuralnomads/nomadhost/internal/metrics"
	"github.com/neuralnomads/nomadhost/internal/supervisor"
)

// Router provides embeddable HTTP handlers for controlling the CLI
// server process.
// Endpoints:
//   GET  {basePath}/status       current status snapshot
//   POST {basePath}/start        query: dev=1 (optional)
//   POST {basePath}/stop
//   POST {basePath}/restart      query: dev=1 (optional, defaults to the previous run's flag)
//   GET  {basePath}/events       server-sent event stream of cli:* events
//   GET  {basePath}/metrics      prometheus exposition (when enabled)
// basePath may be empty or start with '/'; no trailing slash.

type Router struct {
	sup      *supervisor.Supervisor
	bus      *events.Bus
	basePath string
	metrics  bool
}

// NewRouter constructs a new Router with configurable basePath. The
// bus is optional; without one the events endpoint returns 404.
func NewRouter(sup *supervisor.Supervisor, bus *events.Bus, basePath string) *Router {
	return &Router{sup: sup, bus: bus, basePath: sanitizeBase(basePath)}
}

// EnableMetrics mounts the prometheus handler under the base path.
func (r *Router) EnableMetrics() *Router {
	r.metrics = true
	return r
}

// Handler returns an http.Handler powered by gin that can be mounted
// in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.POST("/restart", r.handleRestart)
	if r.bus != nil {
		group.GET("/events", r.handleEvents)
	}
	if r.metrics {
		group.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Shut it down through the returned http.Server.
func NewServer(addr string, r *Router) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

// --- Handlers ---

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.sup.Status())
}

func (r *Router) handleStart(c *gin.Context) {
	r.sup.Start(boolQuery(c, "dev"))
	writeJSON(c, http.StatusAccepted, okResp{OK: true})
}

func (r *Router) handleStop(c *gin.Context) {
	r.sup.Stop()
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleRestart(c *gin.Context) {
	dev := r.sup.Dev()
	if _, ok := c.GetQuery("dev"); ok {
		dev = boolQuery(c, "dev")
	}
	st := r.sup.Restart(dev)
	writeJSON(c, http.StatusAccepted, st)
}

// handleEvents streams bus messages as server-sent events until the
// client disconnects.
func (r *Router) handleEvents(c *gin.Context) {
	ch, cancel := r.bus.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	// The first frame is the current status so late subscribers do not
	// wait for the next transition.
	c.SSEvent(events.EventStatus, r.sup.Status())
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(msg.Event, msg.Payload)
			c.Writer.Flush()
		}
	}
}
