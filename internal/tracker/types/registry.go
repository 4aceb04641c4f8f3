package types

type ListsResponse struct {
	BoardingList   []string `json:"boarding_list"`
	AlightingList  []string `json:"alighting_list"`
	BoardingCount  int      `json:"boarding_count"`
	AlightingCount int      `json:"alighting_count"`
}

type ListAddResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	BoardingCount  int    `json:"boarding_count,omitempty"`
	AlightingCount int    `json:"alighting_count,omitempty"`
}

type ListRemoveResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
