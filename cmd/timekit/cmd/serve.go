package cmd

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timekit-io/timekit/internal/probe"
	"github.com/timekit-io/timekit/pkg/auth"
	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/history"
	"github.com/timekit-io/timekit/pkg/metrics"
	"github.com/timekit-io/timekit/pkg/ratelimit"
	"github.com/timekit-io/timekit/pkg/scheduler"
	"github.com/timekit-io/timekit/pkg/shutdown"
	"github.com/timekit-io/timekit/pkg/timespan"
	"github.com/timekit-io/timekit/pkg/tlsutil"
)

var (
	serveAddr        string
	serveAuthEnabled bool
	serveTLSCert     string
	serveTLSKey      string
)

const (
	taskLimiterCleanup = "limiter-cleanup"
	taskMetricsRefresh = "metrics-refresh"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clock-health metrics over HTTP",
	Long: `Start an HTTP server exposing Prometheus clock-health metrics,
a resolution probe endpoint, and the current monotonic reading.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9120", "listen address")
	serveCmd.Flags().BoolVar(&serveAuthEnabled, "auth", false, "require API tokens on /api routes")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file (generated if missing)")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "TLS key file (generated if missing)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger("serve")

	exporter := metrics.NewExporter()
	limiter := ratelimit.NewLimiter(
		viper.GetFloat64("rate_limit_rps"),
		viper.GetInt("rate_limit_burst"),
		clock.System(),
	)

	store, err := openHistory()
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	router.Handle("/metrics", exporter.Handler()).Methods("GET")
	router.HandleFunc("/health", handleHealth).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Middleware(ratelimit.IPKeyFunc))
	api.HandleFunc("/now", handleNow).Methods("GET")
	api.HandleFunc("/resolution", handleResolution).Methods("GET")
	api.HandleFunc("/history", handleHistory(store)).Methods("GET")

	if serveAuthEnabled {
		tokens := auth.NewTokenManager(clock.System())
		token, err := tokens.GenerateToken("admin", timespan.Hours(24))
		if err != nil {
			return err
		}
		log.Info("API token generated for subject admin", map[string]interface{}{"token": token})
		api.Use(func(next http.Handler) http.Handler { return tokens.Middleware(next) })
	}

	srv := &http.Server{
		Addr:         serveAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	useTLS := serveTLSCert != "" && serveTLSKey != ""
	if useTLS {
		if _, err := os.Stat(serveTLSCert); os.IsNotExist(err) {
			log.Info("generating self-signed certificate", map[string]interface{}{"cert": serveTLSCert})
			if err := tlsutil.GenerateSelfSignedCert(serveTLSCert, serveTLSKey, "timekit", timespan.Days(365)); err != nil {
				return err
			}
		}
		tlsConfig, err := tlsutil.LoadServerConfig(serveTLSCert, serveTLSKey)
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsConfig
	}

	mgr := shutdown.New(timespan.Seconds(10), log)
	mgr.Register("history-store", shutdown.CloseResource(store, "history store"))
	mgr.Register("http-server", shutdown.StopHTTPServer(srv, "metrics"))

	go func() {
		log.Info("listening", map[string]interface{}{"addr": serveAddr, "tls": useTLS})
		var err error
		if useTLS {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Periodic maintenance runs off a deadline queue: limiter entries idle
	// longer than an hour are dropped, metrics refreshed between scrapes.
	tasks := scheduler.NewQueue(clock.System())
	tasks.ScheduleAfter(timespan.Minutes(10), taskLimiterCleanup)
	tasks.ScheduleAfter(timespan.Minutes(1), taskMetricsRefresh)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-mgr.Done():
				return
			case <-ticker.C:
				for _, entry := range tasks.Due() {
					switch entry.Payload {
					case taskLimiterCleanup:
						limiter.Cleanup(timespan.Hours(1))
						tasks.ScheduleAfter(timespan.Minutes(10), taskLimiterCleanup)
					case taskMetricsRefresh:
						exporter.Refresh()
						tasks.ScheduleAfter(timespan.Minutes(1), taskMetricsRefresh)
					}
				}
			}
		}
	}()

	mgr.Wait()
	mgr.Shutdown()
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleNow(w http.ResponseWriter, r *http.Request) {
	uptime := clock.System().Now().Sub(processStart)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"wall":      time.Now().Format(time.RFC3339Nano),
		"uptime_ns": uptime.WholeNanoseconds(),
		"uptime_s":  uptime.SecondsFloat(),
	})
}

func handleHistory(store history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		records, err := store.ListRecords(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		entries := make([]historyEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, toEntry(rec))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}

func handleResolution(w http.ResponseWriter, r *http.Request) {
	res := probe.MeasureResolution(200)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

var processStart = clock.System().Now()
