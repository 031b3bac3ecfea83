package main

import (
	_ "embed"
	"html/template"
	"net"
	"net/http"
	"os"

	"github.com/tomz197/voidminer/internal/config"
	"github.com/tomz197/voidminer/internal/store"
)

const (
	defaultHost   = "0.0.0.0"
	defaultPort   = "8080"
	defaultDBPath = "/app/data/pilots.db"
	boardSize     = 20
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(htmlPage))

type pageData struct {
	SSHHost string
	Pilots  []store.Pilot
}

func main() {
	logger := config.NewLogger(os.Stderr, "voidminer-web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	dbPath := config.GetEnv("GAME_DB", defaultDBPath)

	records, err := store.Open(dbPath)
	if err != nil {
		logger.Fatal("opening pilot store", "err", err)
	}
	defer records.Close()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pilots, err := records.Top(r.Context(), boardSize)
		if err != nil {
			logger.Error("loading leaderboard", "err", err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, pageData{SSHHost: sshHost, Pilots: pilots}); err != nil {
			logger.Error("rendering page", "err", err)
		}
	})

	addr := net.JoinHostPort(host, port)
	logger.Info("starting web server", "addr", "http://"+addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
