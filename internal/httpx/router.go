package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/brandpulse/internal/ingest"
	"github.com/AngelCh415/brandpulse/internal/metrics"
	"github.com/AngelCh415/brandpulse/internal/models"
	"github.com/AngelCh415/brandpulse/internal/store"
	"github.com/AngelCh415/brandpulse/internal/utils"
)

func NewRouter(log *slog.Logger, etl *ingest.ETL, mSvc *metrics.Service, st *store.DatasetStore) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !st.Ready() {
			http.Error(w, "no dataset yet", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Handle("/internal/metrics", promhttp.Handler())

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		sum, err := etl.Run(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, sum)
	})

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("date")
		if q == "" {
			http.Error(w, "date required (YYYY-MM-DD)", 400)
			return
		}
		t, err := time.Parse(models.DateLayout, q)
		if err != nil {
			http.Error(w, "bad date", 400)
			return
		}
		n, err := etl.ExportDay(r.Context(), t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"exported": n})
	})

	mux.Route("/metrics", func(r chi.Router) {
		r.Get("/daily", query(mSvc.QueryDaily))
		r.Get("/summary", query(mSvc.QuerySummary))
		r.Get("/pacing", query(mSvc.QueryPacing))
		r.Get("/comparison", query(mSvc.QueryComparison))
		r.Get("/channels", query(mSvc.QueryChannels))
		r.Get("/platforms", query(mSvc.QueryPlatforms))
		r.Get("/brands", query(mSvc.QueryBrands))
	})
	mux.Get("/events", query(mSvc.QueryEvents))
	mux.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		rep, err := mSvc.Status()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, rep)
	})

	return mux
}

func query[T any](fn func(url.Values) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fn(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, v)
	}
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, metrics.ErrBadQuery):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrNoDataset):
		code = http.StatusServiceUnavailable
	case errors.Is(err, ingest.ErrSinkNotConfigured):
		code = http.StatusConflict
	case errors.Is(err, ingest.ErrNoData):
		code = http.StatusBadGateway
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
