package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Furqan3/bustracker/internal/httpapi"
	"github.com/Furqan3/bustracker/internal/tracker/service"
	"github.com/Furqan3/bustracker/internal/tracker/store/memory"
	"github.com/Furqan3/bustracker/internal/tracker/types"
)

// newTestServer wires up the full dependency graph using in-memory stores
// and returns an httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T, capacity int, boarding, alighting []string) *httptest.Server {
	t.Helper()

	registry := service.NewCardRegistry(memory.NewRegistryStore(boarding, alighting))
	ledger := service.NewLedger(capacity, registry, memory.NewOccupancyStore(), memory.NewScanLogStore(), zerolog.Nop())
	locations := service.NewLocationService(memory.NewFixLogStore(100), zerolog.Nop())

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    zerolog.Nop(),
		Addr:      ":0",
		Ledger:    ledger,
		Locations: locations,
		Registry:  registry,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// ── GPS ──────────────────────────────────────────────────────────────────────

func TestGPS_ValidFix_OK(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := postJSON(t, ts.URL+"/gps", `{"latitude":33.6844,"longitude":73.0479,"timestamp":1700000000,"satellites":8}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	gr := decode[types.GPSResponse](t, resp)
	if gr.Status != "success" {
		t.Errorf("expected status=success, got %q", gr.Status)
	}
}

func TestGPS_LatitudeOutOfRange_400(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := postJSON(t, ts.URL+"/gps", `{"latitude":91.0,"longitude":0,"timestamp":1700000000}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGPS_UnknownField_400(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := postJSON(t, ts.URL+"/gps", `{"latitude":1,"longitude":2,"timestamp":1700000000,"speed":55}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
}

func TestGPSNMEA_ValidGGA_OK(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	sentence := "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
	resp, err := http.Post(ts.URL+"/gps/nmea", "text/plain", bytes.NewReader([]byte(sentence)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// The fix must now be the latest location.
	latest := getURL(t, ts.URL+"/latest/location")
	if latest.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from latest, got %d", latest.StatusCode)
	}
	loc := decode[types.LatestFixResponse](t, latest)
	if loc.Latitude < 48.11 || loc.Latitude > 48.12 {
		t.Errorf("unexpected latitude %v", loc.Latitude)
	}
}

func TestGPSNMEA_Garbage_400(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp, err := http.Post(ts.URL+"/gps/nmea", "text/plain", bytes.NewReader([]byte("not nmea")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLatestLocation_Empty_404(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := getURL(t, ts.URL+"/latest/location")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ── RFID ─────────────────────────────────────────────────────────────────────

func TestRFID_BoardingCard_IncrementsSeats(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27"}, nil)

	resp := postJSON(t, ts.URL+"/rfid", `{"uid":"F3A02F27","timestamp":1700000000}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	sr := decode[types.ScanResponse](t, resp)
	if sr.Action != "boarding" {
		t.Errorf("expected action=boarding, got %q", sr.Action)
	}
	if sr.CurrentSeats != 1 {
		t.Errorf("expected current_seats=1, got %d", sr.CurrentSeats)
	}
	if sr.TotalSeats != 30 {
		t.Errorf("expected total_seats=30, got %d", sr.TotalSeats)
	}
}

func TestRFID_UnknownCard_NoStateChange(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27"}, nil)

	resp := postJSON(t, ts.URL+"/rfid", `{"uid":"DEADBEEF","timestamp":1700000000}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	sr := decode[types.ScanResponse](t, resp)
	if sr.Action != "unknown" {
		t.Errorf("expected action=unknown, got %q", sr.Action)
	}
	if sr.CurrentSeats != 0 {
		t.Errorf("expected current_seats=0, got %d", sr.CurrentSeats)
	}
}

func TestRFID_MissingUID_400(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := postJSON(t, ts.URL+"/rfid", `{"timestamp":1700000000}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLatestRFID_Empty_404(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := getURL(t, ts.URL+"/latest/rfid")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ── Seats ────────────────────────────────────────────────────────────────────

func TestSeatCount_TracksOccupancy(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27"}, []string{"5331E50C"})

	postJSON(t, ts.URL+"/rfid", `{"uid":"F3A02F27","timestamp":1700000000}`)
	postJSON(t, ts.URL+"/rfid", `{"uid":"F3A02F27","timestamp":1700000001}`)

	resp := getURL(t, ts.URL+"/seats/count")
	sc := decode[types.SeatCountResponse](t, resp)
	if sc.SeatsFilled != 2 {
		t.Errorf("expected seats_filled=2, got %d", sc.SeatsFilled)
	}
	if sc.SeatsAvailable != 28 {
		t.Errorf("expected seats_available=28, got %d", sc.SeatsAvailable)
	}
	if sc.OccupancyPercentage != 6.67 {
		t.Errorf("expected occupancy_percentage=6.67, got %v", sc.OccupancyPercentage)
	}
}

func TestSeatReset(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27"}, nil)

	postJSON(t, ts.URL+"/rfid", `{"uid":"F3A02F27","timestamp":1700000000}`)

	resp := postJSON(t, ts.URL+"/seats/reset", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	rr := decode[types.SeatResetResponse](t, resp)
	if rr.SeatsFilled != 0 {
		t.Errorf("expected seats_filled=0 after reset, got %d", rr.SeatsFilled)
	}

	count := getURL(t, ts.URL+"/seats/count")
	sc := decode[types.SeatCountResponse](t, count)
	if sc.SeatsFilled != 0 {
		t.Errorf("expected seats_filled=0, got %d", sc.SeatsFilled)
	}
}

// ── Registry ─────────────────────────────────────────────────────────────────

func TestListAdd_NewUID_OK(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := postJSON(t, ts.URL+"/rfid/lists/boarding/add?uid=AABB1122", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	ar := decode[types.ListAddResponse](t, resp)
	if ar.Status != "success" {
		t.Errorf("expected status=success, got %q", ar.Status)
	}
	if ar.BoardingCount != 1 {
		t.Errorf("expected boarding_count=1, got %d", ar.BoardingCount)
	}
}

func TestListAdd_OtherList_409(t *testing.T) {
	ts := newTestServer(t, 30, []string{"AABB1122"}, nil)

	resp := postJSON(t, ts.URL+"/rfid/lists/alighting/add?uid=AABB1122", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	ar := decode[types.ListAddResponse](t, resp)
	if ar.Status != "conflict" {
		t.Errorf("expected status=conflict, got %q", ar.Status)
	}
}

func TestListAdd_BadList_400(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := postJSON(t, ts.URL+"/rfid/lists/vip/add?uid=AABB1122", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListRemove(t *testing.T) {
	ts := newTestServer(t, 30, []string{"AABB1122"}, nil)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/rfid/lists/boarding/AABB1122", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Removing again reports not_found.
	req2, err := http.NewRequest(http.MethodDelete, ts.URL+"/rfid/lists/boarding/AABB1122", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp2.StatusCode)
	}
}

func TestLists_ReturnsBothLists(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27", "5E6F7A8B"}, []string{"5331E50C"})

	resp := getURL(t, ts.URL+"/rfid/lists")
	lr := decode[types.ListsResponse](t, resp)
	if lr.BoardingCount != 2 {
		t.Errorf("expected boarding_count=2, got %d", lr.BoardingCount)
	}
	if lr.AlightingCount != 1 {
		t.Errorf("expected alighting_count=1, got %d", lr.AlightingCount)
	}
}

// ── History ──────────────────────────────────────────────────────────────────

func TestGPSHistory_LimitApplies(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	for i := 0; i < 5; i++ {
		postJSON(t, ts.URL+"/gps", `{"latitude":1,"longitude":2,"timestamp":1700000000}`)
	}

	resp := getURL(t, ts.URL+"/gps/history?limit=3")
	hr := decode[types.FixHistoryResponse](t, resp)
	if hr.TotalEntries != 5 {
		t.Errorf("expected total_entries=5, got %d", hr.TotalEntries)
	}
	if len(hr.RecentLocations) != 3 {
		t.Errorf("expected 3 recent locations, got %d", len(hr.RecentLocations))
	}
}

func TestGPSHistory_BadLimit_400(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := getURL(t, ts.URL+"/gps/history?limit=abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCardHistory_FiltersByUID(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27"}, nil)

	postJSON(t, ts.URL+"/rfid", `{"uid":"F3A02F27","timestamp":1700000000}`)
	postJSON(t, ts.URL+"/rfid", `{"uid":"DEADBEEF","timestamp":1700000001}`)
	postJSON(t, ts.URL+"/rfid", `{"uid":"f3a02f27","timestamp":1700000002}`)

	resp := getURL(t, ts.URL+"/rfid/card/f3a02f27")
	ch := decode[types.CardHistoryResponse](t, resp)
	if ch.UID != "F3A02F27" {
		t.Errorf("expected canonical uid F3A02F27, got %q", ch.UID)
	}
	if ch.ScanCount != 2 {
		t.Errorf("expected scan_count=2, got %d", ch.ScanCount)
	}
}

// ── Status ───────────────────────────────────────────────────────────────────

func TestStatus_AggregatesSubsystems(t *testing.T) {
	ts := newTestServer(t, 30, []string{"F3A02F27"}, []string{"5331E50C"})

	postJSON(t, ts.URL+"/gps", `{"latitude":33.6844,"longitude":73.0479,"timestamp":1700000000}`)
	postJSON(t, ts.URL+"/rfid", `{"uid":"F3A02F27","timestamp":1700000001}`)

	resp := getURL(t, ts.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	st := decode[types.StatusResponse](t, resp)
	if st.System != "online" {
		t.Errorf("expected system=online, got %q", st.System)
	}
	if st.Seats.Filled != 1 {
		t.Errorf("expected seats.filled=1, got %d", st.Seats.Filled)
	}
	if st.GPS.TotalEntries != 1 || st.GPS.Latest == nil {
		t.Errorf("unexpected gps status: total=%d latest=%v", st.GPS.TotalEntries, st.GPS.Latest)
	}
	if st.RFID.TotalScans != 1 || st.RFID.Latest == nil {
		t.Errorf("unexpected rfid status: total=%d latest=%v", st.RFID.TotalScans, st.RFID.Latest)
	}
	if st.RFID.BoardingCount != 1 {
		t.Errorf("expected boarding_list_count=1, got %d", st.RFID.BoardingCount)
	}
}

func TestStatus_EmptySystem(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := getURL(t, ts.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	st := decode[types.StatusResponse](t, resp)
	if st.GPS.Latest != nil || st.RFID.Latest != nil {
		t.Error("expected nil latest entries on an empty system")
	}
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, 30, nil, nil)

	resp := getURL(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
