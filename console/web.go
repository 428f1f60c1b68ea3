// Package console hosts the Connectus editor locally: a REST API over the
// diagram library, a websocket feed of diagram events, server-rendered
// pages, and the static editor assets.
package console

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/felixge/httpsnoop"
	gohttp "github.com/panyam/goutils/http"

	"github.com/panyam/connectus/services"
)

// WebServer wraps the diagram library and generator for HTTP access
type WebServer struct {
	api       *ConnectusApi
	pages     *PagesHandler
	wsHandler *DiagramWSHandler
	session   *scs.SessionManager
	staticDir string
}

// NewWebServer creates a new web server instance
func NewWebServer(diagrams *services.DiagramService, generator *services.GeneratorService, templatesDir, staticDir string) *WebServer {
	session := scs.New()
	session.Lifetime = 12 * time.Hour
	session.Cookie.Name = "connectus_session"

	if staticDir == "" {
		staticDir = "./web/dist"
	}
	ws := &WebServer{
		session:   session,
		staticDir: staticDir,
	}
	ws.wsHandler = &DiagramWSHandler{
		webServer: ws,
		clients:   make(map[string]*DiagramWSConn),
	}
	ws.api = NewConnectusApi(diagrams, generator, ws.wsHandler)

	templates, err := SetupTemplates(templatesDir)
	if err != nil {
		services.Warn("Template setup failed, pages disabled: %v", err)
	} else {
		ws.pages = NewPagesHandler(templates, diagrams, session)
	}

	return ws
}

// Handler returns a configured HTTP router with all console routes
func (ws *WebServer) Handler() http.Handler {
	r := http.NewServeMux()

	// API routes
	r.Handle("/api/", http.StripPrefix("/api", ws.api.Handler()))

	// Live updates
	r.HandleFunc("/api/live", gohttp.WSServe(ws.wsHandler, nil))

	// Server-rendered pages
	if ws.pages != nil {
		r.Handle("/diagrams", ws.pages.Handler())
		r.Handle("/diagrams/", ws.pages.Handler())
	}

	// Root redirect to the diagram listing
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			http.Redirect(w, req, "/diagrams", http.StatusFound)
			return
		}
		// Serve static files for other root-level paths
		http.FileServer(http.Dir(ws.staticDir)).ServeHTTP(w, req)
	})

	return ws.session.LoadAndSave(withAccessLog(r))
}

// withAccessLog logs one line per request with the response code, size,
// and duration captured by httpsnoop.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		slog.Info("http", "method", r.Method, "path", r.URL.Path,
			"code", m.Code, "bytes", m.Written, "duration", m.Duration)
	})
}
