package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Furqan3/bustracker/internal/gps"
	"github.com/Furqan3/bustracker/internal/tracker/service"
	"github.com/Furqan3/bustracker/internal/tracker/store"
	"github.com/Furqan3/bustracker/internal/tracker/types"
)

// maxRequestBody caps ingest payload sizes. The largest device message
// (a full GPS fix) is well under 1 KiB in JSON, so 4 KiB is generous.
const maxRequestBody = 4096

const defaultHistoryLimit = 20

type Dependencies struct {
	Logger    zerolog.Logger
	Addr      string
	Ledger    *service.Ledger
	Locations *service.LocationService
	Registry  *service.CardRegistry
}

type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	mux        *http.ServeMux
	ledger     *service.Ledger
	locations  *service.LocationService
	registry   *service.CardRegistry
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:    d.Logger,
		mux:       mux,
		ledger:    d.Ledger,
		locations: d.Locations,
		registry:  d.Registry,
	}

	mux.HandleFunc("POST /gps", s.handleGPS)
	mux.HandleFunc("POST /gps/nmea", s.handleGPSNMEA)
	mux.HandleFunc("POST /rfid", s.handleRFID)
	mux.HandleFunc("GET /latest/rfid", s.handleLatestRFID)
	mux.HandleFunc("GET /latest/location", s.handleLatestLocation)
	mux.HandleFunc("GET /seats/count", s.handleSeatCount)
	mux.HandleFunc("POST /seats/reset", s.handleSeatReset)
	mux.HandleFunc("GET /rfid/lists", s.handleLists)
	mux.HandleFunc("POST /rfid/lists/{list}/add", s.handleListAdd)
	mux.HandleFunc("DELETE /rfid/lists/{list}/{uid}", s.handleListRemove)
	mux.HandleFunc("GET /gps/history", s.handleGPSHistory)
	mux.HandleFunc("GET /rfid/history", s.handleRFIDHistory)
	mux.HandleFunc("GET /rfid/card/{uid}", s.handleCardHistory)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Ingest ───────────────────────────────────────────────────────────────────

func (s *Server) handleGPS(w http.ResponseWriter, r *http.Request) {
	var req types.GPSRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.locations.Ingest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err, "gps ingest")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGPSNMEA(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body", "could not read request body")
		return
	}

	fix, err := gps.ParseGGA(string(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_nmea", err.Error())
		return
	}

	// GGA carries time-of-day only; use arrival time as the device
	// timestamp.
	sats := fix.Satellites
	resp, err := s.locations.Ingest(r.Context(), types.GPSRequest{
		Latitude:   fix.Latitude,
		Longitude:  fix.Longitude,
		Timestamp:  time.Now().UTC().Unix(),
		Satellites: &sats,
	})
	if err != nil {
		s.writeServiceError(w, err, "nmea ingest")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRFID(w http.ResponseWriter, r *http.Request) {
	var req types.ScanRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.ledger.IngestScan(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err, "rfid ingest")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Latest ───────────────────────────────────────────────────────────────────

func (s *Server) handleLatestRFID(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.LatestScan(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "No RFID scans available")
		return
	}
	if err != nil {
		s.writeServiceError(w, err, "latest rfid")
		return
	}

	writeJSON(w, http.StatusOK, latestScanFromRecord(rec))
}

func (s *Server) handleLatestLocation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.locations.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "No GPS data available")
		return
	}
	if err != nil {
		s.writeServiceError(w, err, "latest location")
		return
	}

	writeJSON(w, http.StatusOK, latestFixFromRecord(rec))
}

// ── Seats ────────────────────────────────────────────────────────────────────

func (s *Server) handleSeatCount(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.SeatCount(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "seat count")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeatReset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Reset(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "seat reset")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Registry ─────────────────────────────────────────────────────────────────

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	boarding, alighting, err := s.registry.Lists(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "rfid lists")
		return
	}

	writeJSON(w, http.StatusOK, types.ListsResponse{
		BoardingList:   boarding,
		AlightingList:  alighting,
		BoardingCount:  len(boarding),
		AlightingCount: len(alighting),
	})
}

func (s *Server) handleListAdd(w http.ResponseWriter, r *http.Request) {
	list := store.ListType(r.PathValue("list"))
	uid := store.CanonicalUID(r.URL.Query().Get("uid"))

	outcome, err := s.registry.Add(r.Context(), uid, list)
	if err != nil {
		s.writeServiceError(w, err, "list add")
		return
	}

	switch outcome {
	case store.AddAdded:
		boarding, alighting, err := s.registry.Lists(r.Context())
		if err != nil {
			s.writeServiceError(w, err, "list add counts")
			return
		}
		resp := types.ListAddResponse{
			Status:  "success",
			Message: fmt.Sprintf("UID %s added to %s list", uid, list),
		}
		if list == store.ListBoarding {
			resp.BoardingCount = len(boarding)
		} else {
			resp.AlightingCount = len(alighting)
		}
		writeJSON(w, http.StatusOK, resp)
	case store.AddAlreadyPresent:
		writeJSON(w, http.StatusOK, types.ListAddResponse{
			Status:  "exists",
			Message: fmt.Sprintf("UID %s already in %s list", uid, list),
		})
	case store.AddConflict:
		writeJSON(w, http.StatusConflict, types.ListAddResponse{
			Status:  "conflict",
			Message: fmt.Sprintf("UID %s is in %s list", uid, list.Other()),
		})
	}
}

func (s *Server) handleListRemove(w http.ResponseWriter, r *http.Request) {
	list := store.ListType(r.PathValue("list"))
	uid := store.CanonicalUID(r.PathValue("uid"))

	removed, err := s.registry.Remove(r.Context(), uid, list)
	if err != nil {
		s.writeServiceError(w, err, "list remove")
		return
	}

	if !removed {
		writeJSON(w, http.StatusNotFound, types.ListRemoveResponse{
			Status:  "not_found",
			Message: fmt.Sprintf("UID %s not in %s list", uid, list),
		})
		return
	}

	writeJSON(w, http.StatusOK, types.ListRemoveResponse{
		Status:  "success",
		Message: fmt.Sprintf("UID %s removed from %s list", uid, list),
	})
}

// ── History ──────────────────────────────────────────────────────────────────

func (s *Server) handleGPSHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	total, recent, err := s.locations.History(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err, "gps history")
		return
	}

	writeJSON(w, http.StatusOK, types.FixHistoryResponse{
		TotalEntries:    total,
		RecentLocations: fixEntriesFromRecords(recent),
	})
}

func (s *Server) handleRFIDHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	total, recent, err := s.ledger.ScanHistory(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err, "rfid history")
		return
	}

	writeJSON(w, http.StatusOK, types.ScanHistoryResponse{
		TotalScans:  total,
		RecentScans: scanEntriesFromRecords(recent),
	})
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	uid, recs, err := s.ledger.CardHistory(r.Context(), r.PathValue("uid"))
	if err != nil {
		s.writeServiceError(w, err, "card history")
		return
	}

	writeJSON(w, http.StatusOK, types.CardHistoryResponse{
		UID:       uid,
		ScanCount: len(recs),
		Scans:     scanEntriesFromRecords(recs),
	})
}

// ── Status ───────────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	seats, err := s.ledger.SeatCount(ctx)
	if err != nil {
		s.writeServiceError(w, err, "status seats")
		return
	}

	fixTotal, err := s.locations.Count(ctx)
	if err != nil {
		s.writeServiceError(w, err, "status gps count")
		return
	}
	scanTotal, err := s.ledger.ScanCount(ctx)
	if err != nil {
		s.writeServiceError(w, err, "status scan count")
		return
	}

	var latestFix *types.FixEntry
	if rec, err := s.locations.Latest(ctx); err == nil {
		e := fixEntryFromRecord(rec)
		latestFix = &e
	} else if !errors.Is(err, store.ErrNotFound) {
		s.writeServiceError(w, err, "status latest fix")
		return
	}

	var latestScan *types.ScanEntry
	if rec, err := s.ledger.LatestScan(ctx); err == nil {
		e := scanEntryFromRecord(rec)
		latestScan = &e
	} else if !errors.Is(err, store.ErrNotFound) {
		s.writeServiceError(w, err, "status latest scan")
		return
	}

	boarding, alighting, err := s.registry.Lists(ctx)
	if err != nil {
		s.writeServiceError(w, err, "status lists")
		return
	}

	writeJSON(w, http.StatusOK, types.StatusResponse{
		System: "online",
		Seats: types.SeatsStatus{
			Filled:              seats.SeatsFilled,
			Total:               seats.TotalSeats,
			Available:           seats.SeatsAvailable,
			OccupancyPercentage: seats.OccupancyPercentage,
		},
		GPS: types.GPSStatus{
			TotalEntries: fixTotal,
			Latest:       latestFix,
		},
		RFID: types.RFIDStatus{
			TotalScans:     scanTotal,
			Latest:         latestScan,
			BoardingCount:  len(boarding),
			AlightingCount: len(alighting),
		},
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "GPS & RFID Bus Tracking API",
		"endpoints": map[string]string{
			"POST /gps":                         "Submit GPS coordinates",
			"POST /gps/nmea":                    "Submit a raw NMEA GGA sentence",
			"POST /rfid":                        "Submit RFID scan",
			"GET /latest/rfid":                  "Get latest RFID scan",
			"GET /latest/location":              "Get latest GPS location",
			"GET /seats/count":                  "Get current seat count",
			"POST /seats/reset":                 "Reset seat count to zero",
			"GET /rfid/lists":                   "Get boarding and alighting lists",
			"POST /rfid/lists/{list}/add?uid=":  "Add UID to a list",
			"DELETE /rfid/lists/{list}/{uid}":   "Remove UID from a list",
			"GET /gps/history?limit=":           "Get recent GPS locations",
			"GET /rfid/history?limit=":          "Get recent RFID scans",
			"GET /rfid/card/{uid}":              "Get scans for a specific card",
			"GET /status":                       "Get complete system status",
		},
	})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// writeServiceError maps service validation errors to 400s and
// everything else to a logged 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidCardUID):
		writeError(w, http.StatusBadRequest, "invalid_uid", err.Error())
	case errors.Is(err, service.ErrInvalidTimestamp):
		writeError(w, http.StatusBadRequest, "invalid_timestamp", err.Error())
	case errors.Is(err, service.ErrInvalidLatitude):
		writeError(w, http.StatusBadRequest, "invalid_latitude", err.Error())
	case errors.Is(err, service.ErrInvalidLongitude):
		writeError(w, http.StatusBadRequest, "invalid_longitude", err.Error())
	case errors.Is(err, service.ErrInvalidSatellites):
		writeError(w, http.StatusBadRequest, "invalid_satellites", err.Error())
	case errors.Is(err, service.ErrInvalidListType):
		writeError(w, http.StatusBadRequest, "invalid_list", err.Error())
	default:
		s.logger.Error().Err(err).Str("op", op).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
