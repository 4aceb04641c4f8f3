package types

// ScanRequest is the payload sent by the RFID reader on each card tap.
type ScanRequest struct {
	UID       string `json:"uid"`
	Timestamp int64  `json:"timestamp"`
}

// ScanResponse echoes the transition outcome back to the reader.
// Action is one of boarding, boarding_denied, alighting,
// alighting_error, unknown.
type ScanResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Action       string `json:"action"`
	CurrentSeats int    `json:"current_seats"`
	TotalSeats   int    `json:"total_seats"`
}

type LatestScanResponse struct {
	UID       string `json:"uid"`
	Timestamp int64  `json:"timestamp"`
	Datetime  string `json:"datetime"`
	Action    string `json:"action"`
}

type ScanEntry struct {
	UID        string `json:"uid"`
	Timestamp  int64  `json:"timestamp"`
	Datetime   string `json:"datetime"`
	Action     string `json:"action"`
	SeatsAfter int    `json:"seats_after"`
}

type ScanHistoryResponse struct {
	TotalScans  int         `json:"total_scans"`
	RecentScans []ScanEntry `json:"recent_scans"`
}

type CardHistoryResponse struct {
	UID       string      `json:"uid"`
	ScanCount int         `json:"scan_count"`
	Scans     []ScanEntry `json:"scans"`
}
