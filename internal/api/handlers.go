// Package api exposes the discovery engine over HTTP: camera registration,
// batch probing, result listings, and a websocket feed of live results.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/majhol08/rtspscout/internal/cache"
	"github.com/majhol08/rtspscout/internal/cameras"
	"github.com/majhol08/rtspscout/internal/catalog"
	"github.com/majhol08/rtspscout/internal/discover"
	"github.com/majhol08/rtspscout/internal/metrics"
	"github.com/majhol08/rtspscout/internal/middleware"
	"github.com/majhol08/rtspscout/internal/probe"
	"github.com/majhol08/rtspscout/internal/scan"
	"github.com/majhol08/rtspscout/internal/tokens"
)

// Handler bundles the server's moving parts behind the HTTP surface.
type Handler struct {
	Registry *cameras.Registry
	Manager  *scan.Manager
	// Engine enables per-batch option overrides on Probe; nil means
	// overrides are ignored and the manager's engine is used as-is.
	Engine  *discover.Engine
	Cache   *cache.Cache
	Catalog catalog.Source
	Metrics *metrics.Collector
	Tokens  *tokens.Manager
	Hub     *Hub

	// BaseCtx outlives individual requests; batches launched by Probe run
	// under it so they survive the triggering request.
	BaseCtx context.Context
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Router builds the full route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JWTAuth(h.Tokens))

		r.Post("/cameras", h.AddCameras)
		r.Get("/cameras", h.ListCameras)
		r.Get("/cameras/{id}", h.GetCamera)
		r.Patch("/cameras/{id}", h.SetCameraPath)
		r.Post("/probe", h.Probe)
		r.Get("/hints/{code}", h.Hint)
		r.Get("/vendors", h.ListVendors)
		if h.Hub != nil {
			r.Get("/ws", h.Hub.ServeWS)
		}
	})

	return r
}

// POST /api/v1/cameras
func (h *Handler) AddCameras(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IPs      []string `json:"ips"`
		Port     int      `json:"port"`
		User     string   `json:"user"`
		Password string   `json:"password"`
		Vendor   string   `json:"vendor"`
		Path     string   `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.IPs) == 0 {
		respondError(w, http.StatusBadRequest, "ips is required")
		return
	}
	if req.Port < 0 || req.Port > 65535 {
		respondError(w, http.StatusBadRequest, "Invalid port")
		return
	}
	if req.Vendor != "" && req.Vendor != "unknown" {
		if h.Catalog.Current().Get(req.Vendor).ID != req.Vendor {
			respondError(w, http.StatusBadRequest, "Unknown vendor: "+req.Vendor)
			return
		}
	}
	for _, ip := range req.IPs {
		if net.ParseIP(ip) == nil {
			respondError(w, http.StatusBadRequest, "Invalid IP: "+ip)
			return
		}
	}

	created := make([]cameras.Record, 0, len(req.IPs))
	for _, ip := range req.IPs {
		id := cameras.Identity{
			IP:       ip,
			Port:     req.Port,
			User:     req.User,
			Password: req.Password,
			Vendor:   req.Vendor,
			Path:     req.Path,
		}
		// A cache hit fills in hints the caller left blank. Discovery
		// still re-validates everything.
		if h.Cache != nil {
			if entry, ok := h.Cache.Get(ip); ok {
				if id.Port == 0 {
					id.Port = entry.Port
				}
				if id.User == "" && id.Password == "" {
					id.User = entry.User
					id.Password = entry.Password
				}
				if id.Vendor == "" {
					id.Vendor = entry.Vendor
				}
				if id.Path == "" {
					id.Path = entry.Path
				}
			}
		}
		created = append(created, h.Registry.Add(id))
	}
	respondJSON(w, http.StatusCreated, map[string]any{"cameras": created})
}

// GET /api/v1/cameras
func (h *Handler) ListCameras(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"cameras": h.Registry.List()})
}

// GET /api/v1/cameras/{id}
func (h *Handler) GetCamera(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid camera ID")
		return
	}
	rec, ok := h.Registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Camera not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// PATCH /api/v1/cameras/{id}
// Overrides the stream path hint; an empty path resets to auto-discovery.
func (h *Handler) SetCameraPath(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid camera ID")
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.Registry.SetPath(id, req.Path); err != nil {
		respondError(w, http.StatusNotFound, "Camera not found")
		return
	}
	rec, _ := h.Registry.Get(id)
	respondJSON(w, http.StatusOK, rec)
}

// POST /api/v1/probe
// Launches a batch over the given ids (or every registered camera). The
// batch runs in the background; results arrive via the listing endpoints,
// the websocket feed, and NATS.
func (h *Handler) Probe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs         []string `json:"ids"`
		All         bool     `json:"all"`
		Workers     int      `json:"workers"`
		UseDefaults *bool    `json:"allow_default_credentials"`
		MaxDefaults int      `json:"max_default_credentials"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Workers < 0 || req.Workers > scan.MaxWorkers {
		respondError(w, http.StatusBadRequest, "workers out of range")
		return
	}

	var ids []uuid.UUID
	if req.All {
		ids = h.Registry.IDs()
	} else {
		for _, raw := range req.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid camera ID: "+raw)
				return
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "no cameras selected")
		return
	}

	mgr := h.Manager
	if h.Engine != nil && (req.UseDefaults != nil || req.MaxDefaults > 0) {
		opts := h.Engine.Options()
		if req.UseDefaults != nil {
			opts.AllowDefaultCredentials = *req.UseDefaults
		}
		if req.MaxDefaults > 0 {
			opts.MaxDefaultCredentials = req.MaxDefaults
		}
		mgr = mgr.WithEngine(h.Engine.WithOptions(opts))
	}

	ctx := h.BaseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go mgr.Run(ctx, ids, req.Workers)

	respondJSON(w, http.StatusAccepted, map[string]any{"submitted": len(ids)})
}

// GET /api/v1/hints/{code}
func (h *Handler) Hint(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status code")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"code": code,
		"hint": probe.HintFor(code),
	})
}

// GET /api/v1/vendors
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	cat := h.Catalog.Current()
	type vendor struct {
		ID    string   `json:"id"`
		Ports []int    `json:"ports"`
		Paths []string `json:"paths"`
	}
	out := make([]vendor, 0, cat.Len())
	cat.Each(func(p catalog.Profile) bool {
		out = append(out, vendor{ID: p.ID, Ports: p.Ports, Paths: p.Paths})
		return true
	})
	respondJSON(w, http.StatusOK, map[string]any{"vendors": out})
}
