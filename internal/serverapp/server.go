package serverapp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
	"github.com/ca-terumi-k/todo-app-v1/internal/config"
	"github.com/ca-terumi-k/todo-app-v1/internal/httpmw"
	"github.com/ca-terumi-k/todo-app-v1/internal/server"
	"github.com/ca-terumi-k/todo-app-v1/internal/session"
	"github.com/ca-terumi-k/todo-app-v1/internal/telemetry"
	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
	staticfiles "github.com/ca-terumi-k/todo-app-v1/static"
	"github.com/ca-terumi-k/todo-app-v1/ui/page"
)

const serviceName = "todo"

// telemetryLimit bounds the in-memory event log across all sessions.
const telemetryLimit = 50000

type Options struct {
	Config *config.Config
	Logger *log.Logger
	Clock  clock.Clock
	// Heartbeat overrides the event-stream keep-alive interval.
	Heartbeat time.Duration
}

// App is the assembled web surface.
type App struct {
	Handler   http.Handler
	Sessions  *session.Registry
	Telemetry *telemetry.MemoryRepository
	Routes    *server.RouteRegistry
}

func NewHandler(opts Options) (http.Handler, error) {
	app, err := New(opts)
	if err != nil {
		return nil, err
	}
	return app.Handler, nil
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	opts.Clock = clock.OrReal(opts.Clock)
	cfg := opts.Config
	logger := opts.Logger

	events := telemetry.NewMemoryRepository(telemetryLimit, opts.Clock)
	sessions := session.NewRegistry(session.Options{
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
		Clock:       opts.Clock,
		Logger:      logger,
		OnCreate: func(s *session.Session) {
			s.OnClose(s.Store.Subscribe(telemetry.Recorder(events, s.ID, logger)))
		},
		OnEvict: func(s *session.Session) {
			if err := events.ForgetSession(s.ID); err != nil {
				logger.Warn("telemetry_forget_failed", "session", s.ID, "err", err)
			}
		},
	})
	cookies := session.NewCookies(sessions, cfg.Session.CookieName, cfg.Session.TTL)

	todoHandler := todo.NewHandler(nil)
	todoHandler.SetStoreResolver(session.StoreFromRequest)
	if opts.Heartbeat > 0 {
		todoHandler.SetHeartbeat(opts.Heartbeat)
	}
	forms := todo.NewFormHandler(todoHandler, "/")

	statsHandler := telemetry.NewHandler(events)
	statsHandler.SetSessionResolver(func(r *http.Request) string {
		if s, ok := session.FromContext(r.Context()); ok {
			return s.ID
		}
		return ""
	})

	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}
	handle := func(pattern, summary, example string, h http.HandlerFunc) {
		server.Handle(mux, rr, pattern, summary, example, cookies.RequireFunc(h))
	}

	handle("GET /api/todos", "Current list (optional ?filter=)", "", todoHandler.List)
	handle("POST /api/todos", "Add a task", `{"value":"buy milk"}`, todoHandler.Create)
	handle("PATCH /api/todos/{id}", "Edit, check or trash a task", `{"checked":true}`, todoHandler.Update)
	handle("DELETE /api/todos/{id}", "Move a task to the trash", "", todoHandler.Remove)
	handle("POST /api/todos/{id}/restore", "Restore a task from the trash", "", todoHandler.Restore)
	handle("GET /api/todos/events", "Server-sent snapshots", "", todoHandler.Events)
	handle("POST /api/trash/empty", "Purge the trash", "", todoHandler.EmptyTrash)
	handle("PUT /api/filter", "Change the active filter", `{"filter":"checked"}`, todoHandler.SetFilter)
	handle("GET /api/stats", "Session activity counts", "", statsHandler.Stats)

	handle("POST /todos", "Add form", "value=buy+milk", forms.Add)
	handle("POST /todos/{id}/edit", "Edit form", "value=buy+oat+milk", forms.Edit)
	handle("POST /todos/{id}/toggle", "Toggle form", "checked=true", forms.Toggle)
	handle("POST /todos/{id}/remove", "Trash/restore form", "removed=true", forms.Remove)
	handle("POST /trash/empty", "Empty trash form", "", forms.EmptyTrash)
	handle("POST /filter", "Filter form", "filter=removed", forms.SetFilter)

	handle("GET /{$}", "List page", "", func(w http.ResponseWriter, r *http.Request) {
		data := page.IndexData{
			Title:       cfg.UI.Title,
			DefaultText: cfg.UI.DefaultText,
			State:       session.StoreFromRequest(r).Snapshot(),
		}
		templ.Handler(page.Index(data)).ServeHTTP(w, r)
	})

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if cfg.Server.DevStatic {
		staticHandler = http.FileServer(http.Dir(cfg.Server.StaticDir))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticHandler))

	status := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    opts.Clock.Now().UTC().Format(time.RFC3339),
		})
	}
	mux.HandleFunc("GET /healthz", status)
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		// Sweeping proves the registry lock is not wedged.
		sessions.Sweep()
		status(w, r)
	})
	server.RegisterRoutesJSON(mux, rr)

	h := httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(logger),
		httpmw.WithRecover(logger),
	)
	return &App{Handler: h, Sessions: sessions, Telemetry: events, Routes: rr}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
