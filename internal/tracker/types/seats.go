package types

type SeatCountResponse struct {
	SeatsFilled         int     `json:"seats_filled"`
	TotalSeats          int     `json:"total_seats"`
	SeatsAvailable      int     `json:"seats_available"`
	OccupancyPercentage float64 `json:"occupancy_percentage"`
}

type SeatResetResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	SeatsFilled int    `json:"seats_filled"`
	TotalSeats  int    `json:"total_seats"`
}
