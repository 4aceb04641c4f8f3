package types

// StatusResponse is the aggregate snapshot served at GET /status.
// Latest entries are nil when the respective log is empty.
type StatusResponse struct {
	System string      `json:"system"`
	Seats  SeatsStatus `json:"seats"`
	GPS    GPSStatus   `json:"gps"`
	RFID   RFIDStatus  `json:"rfid"`
}

type SeatsStatus struct {
	Filled              int     `json:"filled"`
	Total               int     `json:"total"`
	Available           int     `json:"available"`
	OccupancyPercentage float64 `json:"occupancy_percentage"`
}

type GPSStatus struct {
	TotalEntries int       `json:"total_entries"`
	Latest       *FixEntry `json:"latest"`
}

type RFIDStatus struct {
	TotalScans     int        `json:"total_scans"`
	Latest         *ScanEntry `json:"latest"`
	BoardingCount  int        `json:"boarding_list_count"`
	AlightingCount int        `json:"alighting_list_count"`
}
