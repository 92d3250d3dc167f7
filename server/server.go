package server

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"polytrace/server/fastview"
	"polytrace/server/rootview"
	"polytrace/server/trackview"
	"polytrace/simrun"
)

// Server serves a single page, to a single client, over a single websocket:
// the live track view of every polymer a simrun.Run call is driving.
type Server struct {
	addr       string
	lastUpdate [][]trackview.Cell
	rootView   *rootview.RootView
	router     *mux.Router
}

// NewServer initializes the view layer and returns a Server ready to Serve.
func NewServer(
	ctx context.Context,
	addr string,
	initialSnapshots []simrun.Snapshot,
	snapshotUpdates <-chan []simrun.Snapshot,
) (*Server, error) {
	rv := rootview.NewRootView(ctx, initialSnapshots, snapshotUpdates)

	srv := &Server{
		addr:       addr,
		lastUpdate: trackview.Convert(initialSnapshots),
		rootView:   rv,
		router:     mux.NewRouter(),
	}

	srv.router.HandleFunc("/", srv.serveIndex).Methods(http.MethodGet)
	srv.router.HandleFunc("/ws", srv.serveWebsocket)

	return srv, nil
}

// Serve blocks, serving http requests until the listener fails.
func (server *Server) Serve() (err error) {
	if err = http.ListenAndServe(server.addr, server.router); err != nil {
		err = fmt.Errorf("serve: %w", err)
	}
	return
}

// serveWebsocket upgrades the connection and hands it to a fastview.Client
// that syncs the root view's aggregated element updates onto it until the
// peer disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient[[]fastview.EleUpdate](server.rootView.Updates(), w, r)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	if err := cli.Sync(); err != nil {
		fmt.Println("client sync ended:", err)
	}
}

func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, server.rootView, server.lastUpdate); err != nil {
		_, _ = w.Write([]byte(err.Error()))
	}
}

func renderTemplate(w io.Writer, vc fastview.ViewComponent, data interface{}) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}
	err = t.Execute(w, data)
	return
}
