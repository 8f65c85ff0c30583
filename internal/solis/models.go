package solis

// Station is one solar installation as returned by userStationList. Only the
// ID is used downstream; the name rides along for logging.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"stationName"`
}

// DailyEnergyRecord is one day of production within a station month. Energy
// is in kWh; days the API omits or nulls out decode as 0.
type DailyEnergyRecord struct {
	Date   string  `json:"date"`
	Energy float64 `json:"energy"`
}

type stationListResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	Data    struct {
		Page struct {
			Total   int       `json:"total"`
			Records []Station `json:"records"`
		} `json:"page"`
	} `json:"data"`
}

type stationMonthResponse struct {
	Success bool                `json:"success"`
	Code    string              `json:"code"`
	Msg     string              `json:"msg"`
	Data    []DailyEnergyRecord `json:"data"`
}
