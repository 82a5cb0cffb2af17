// Package restserver exposes the optimizer over HTTP: a health probe
// plus JSON endpoints for on-demand tilt searches and energy
// integrations.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/skysolve/suntilt/internal/log"
	"github.com/skysolve/suntilt/internal/pipeline"
	"github.com/skysolve/suntilt/pkg/config"
	"github.com/skysolve/suntilt/pkg/ephemeris"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	httpCfg  config.HTTPData
	sites    map[string]ephemeris.Site
	pipeline *pipeline.Pipeline
	Server   http.Server
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller serving the
// configured sites through the given pipeline.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, p *pipeline.Pipeline, logger *zap.SugaredLogger) (*Controller, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("no http section configured")
	}
	httpCfg := *cfg.HTTP

	ctrl := &Controller{
		ctx:      ctx,
		wg:       wg,
		httpCfg:  httpCfg,
		pipeline: p,
		logger:   logger,
	}

	ctrl.sites = make(map[string]ephemeris.Site)
	for _, s := range cfg.Sites {
		ctrl.sites[s.Name] = ephemeris.Site{
			Name:      s.Name,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Altitude:  s.Altitude,
			Timezone:  s.Timezone,
		}
	}
	if len(ctrl.sites) == 0 {
		return nil, fmt.Errorf("no sites configured for the REST server")
	}

	if ctrl.httpCfg.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.httpCfg.ListenAddr = "0.0.0.0"
	}
	if ctrl.httpCfg.Port == 0 {
		logger.Info("http.port not provided; defaulting to 8080")
		ctrl.httpCfg.Port = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.httpCfg.ListenAddr, ctrl.httpCfg.Port)
	ctrl.Server.Handler = router
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/optimize", c.handlers.PostOptimize).Methods(http.MethodPost)
	router.HandleFunc("/api/energy", c.handlers.PostEnergy).Methods(http.MethodPost)

	return router
}

// siteByName resolves a configured site, matching names exactly.
func (c *Controller) siteByName(name string) (ephemeris.Site, bool) {
	site, ok := c.sites[name]
	return site, ok
}
