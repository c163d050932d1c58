package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"zapdesk/internal/config"
	"zapdesk/internal/http-server/handlers/attendant"
	"zapdesk/internal/http-server/handlers/errors"
	"zapdesk/internal/http-server/handlers/instance"
	"zapdesk/internal/http-server/handlers/metric"
	"zapdesk/internal/http-server/handlers/quickreply"
	"zapdesk/internal/http-server/handlers/report"
	"zapdesk/internal/http-server/handlers/team"
	"zapdesk/internal/http-server/handlers/webhook"
	"zapdesk/internal/http-server/middleware/authenticate"
	"zapdesk/internal/http-server/middleware/timeout"
	"zapdesk/internal/lib/api/response"
	"zapdesk/internal/lib/sl"
	"zapdesk/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	webhook.Core
	instance.Core
	attendant.Core
	team.Core
	quickreply.Core
	metric.Core
	report.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// Gateway deliveries are unauthenticated; the gateway only knows the
	// instance path.
	router.With(timeout.Timeout(30)).Post("/webhook/{instance}", webhook.Receive(log, handler))

	// WebSocket upgrade stays outside the timeout middleware, the key is
	// checked before upgrading.
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if err := handler.AuthenticateKey(key); err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}
		ws.ServeWs(hub, log, w, r)
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(30))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/instances", func(r chi.Router) {
			r.Get("/", instance.List(log, handler))
			r.Post("/", instance.Create(log, handler))
			r.Get("/{id}", instance.Get(log, handler))
			r.Delete("/{id}", instance.Delete(log, handler))
		})
		v1.Route("/attendants", func(r chi.Router) {
			r.Get("/", attendant.List(log, handler))
			r.Post("/", attendant.Create(log, handler))
			r.Delete("/{id}", attendant.Delete(log, handler))
		})
		v1.Route("/teams", func(r chi.Router) {
			r.Get("/", team.List(log, handler))
			r.Post("/", team.Create(log, handler))
			r.Delete("/{id}", team.Delete(log, handler))
		})
		v1.Route("/quick-replies", func(r chi.Router) {
			r.Get("/", quickreply.List(log, handler))
			r.Post("/", quickreply.Create(log, handler))
			r.Delete("/{id}", quickreply.Delete(log, handler))
		})
		v1.Route("/metrics", func(r chi.Router) {
			r.Get("/overview", metric.Overview(log, handler))
		})
		v1.Route("/conversations", func(r chi.Router) {
			r.Get("/", metric.Conversations(log, handler))
			r.Get("/{id}", metric.Conversation(log, handler))
			r.Post("/{id}/resolve", metric.Resolve(log, handler))
			r.Post("/{id}/abandon", metric.Abandon(log, handler))
			r.Post("/{id}/assign", metric.Assign(log, handler))
		})
		v1.Route("/reports", func(r chi.Router) {
			r.Post("/generate", report.Generate(log, handler))
			r.Get("/attendants", report.Attendants(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
