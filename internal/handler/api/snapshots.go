package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"StructSnap/internal/domain/models"
	domrepo "StructSnap/internal/domain/repository"
	icache "StructSnap/internal/service/cache"
	"StructSnap/internal/service/metrics"
	"StructSnap/internal/service/ratelimit"
	pkgcache "StructSnap/pkg/cache"
	xhttp "StructSnap/pkg/http"
	xlogger "StructSnap/pkg/logger"
)

// SnapshotsHandler serves the latest published snapshots, zone listings and
// reports. It reads the latest pointers only; it never triggers a run.
type SnapshotsHandler struct {
	logger *xlogger.Logger
	latest domrepo.LatestStore
	cache  icache.BytesCache
	rl     *ratelimit.Limiter
}

func NewSnapshotsHandler(logger *xlogger.Logger, latest domrepo.LatestStore) *SnapshotsHandler {
	metrics.Register()
	return &SnapshotsHandler{logger: logger, latest: latest, rl: ratelimit.New()}
}

// SetCache injects a short-TTL response cache.
func (h *SnapshotsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *SnapshotsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/zones", h.Zones)
	g.GET("/report", h.Report)
}

// Health is the liveness probe.
func (h *SnapshotsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Snapshot returns the latest published snapshot for a symbol and variant.
func (h *SnapshotsHandler) Snapshot(c echo.Context) error {
	start := time.Now()
	endpoint := "snapshot"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":snapshot", 10, 5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many requests", 429))
	}
	variant := domrepo.NormalizeVariant(req.Variant)

	payload, err := h.loadLatest(c, req.Symbol, variant)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return xhttp.NotFoundResponse(c, "no snapshot for "+req.Symbol)
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("snapshot fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.JSONBlob(200, payload)
}

// Zones returns the zone listing from the latest full snapshot, optionally
// filtered by side and tier.
func (h *SnapshotsHandler) Zones(c echo.Context) error {
	start := time.Now()
	endpoint := "zones"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ZonesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":zones", 10, 5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many requests", 429))
	}

	payload, err := h.loadLatest(c, req.Symbol, models.VariantFull)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return xhttp.NotFoundResponse(c, "no snapshot for "+req.Symbol)
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("zones fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, xhttp.InternalError("corrupt snapshot payload"))
	}
	zones := filterZones(snap.AllZones, models.Side(req.Side), models.Tier(req.Tier))
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol": snap.Symbol,
		"as_of":  snap.AsOf,
		"price":  snap.Price,
		"count":  len(zones),
		"zones":  zones,
	})
}

// Report returns the latest markdown report.
func (h *SnapshotsHandler) Report(c echo.Context) error {
	start := time.Now()
	endpoint := "report"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":report", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many requests", 429))
	}

	report, err := h.latest.GetReport(c.Request().Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return xhttp.NotFoundResponse(c, "no report for "+req.Symbol)
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("report fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return c.Blob(200, "text/markdown; charset=utf-8", []byte(report))
}

// loadLatest serves the latest payload through the short-TTL response cache.
func (h *SnapshotsHandler) loadLatest(c echo.Context, symbol string, variant models.Variant) ([]byte, error) {
	key := "resp:" + symbol + ":" + string(variant)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(key); err == nil && ok {
			return b, nil
		}
	}
	payload, err := h.latest.GetLatest(c.Request().Context(), symbol, variant)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, payload, 15*time.Second); err != nil {
			h.logger.Warn("response cache set failed", xlogger.Error(err))
		}
	}
	return payload, nil
}

func filterZones(zones []models.Zone, side models.Side, tier models.Tier) []models.Zone {
	if side == "" && tier == "" {
		return zones
	}
	out := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		if side != "" && z.Side != side {
			continue
		}
		if tier != "" && z.Tier != tier {
			continue
		}
		out = append(out, z)
	}
	return out
}
