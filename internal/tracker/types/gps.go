package types

// GPSRequest is the fix payload posted by the tracker firmware.
// Satellites is optional; the GPS module omits it until it has a lock.
type GPSRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Timestamp  int64   `json:"timestamp"`
	Satellites *int    `json:"satellites,omitempty"`
}

type GPSResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

type LatestFixResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Timestamp  int64   `json:"timestamp"`
	Datetime   string  `json:"datetime"`
	Satellites int     `json:"satellites"`
}

type FixEntry struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Timestamp  int64   `json:"timestamp"`
	Datetime   string  `json:"datetime"`
	Satellites int     `json:"satellites"`
}

type FixHistoryResponse struct {
	TotalEntries    int        `json:"total_entries"`
	RecentLocations []FixEntry `json:"recent_locations"`
}
