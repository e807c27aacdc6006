package attendance

type PunchRequest struct {
	Type      string   `json:"type" binding:"required,oneof=IN OUT"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type PunchEventResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	PunchedAt string  `json:"punched_at"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Location  *string `json:"location,omitempty"`
}

type StateResponse struct {
	Status             string              `json:"status"`
	LastPunch          *PunchEventResponse `json:"last_punch,omitempty"`
	SessionStart       *string             `json:"session_start,omitempty"`
	LiveElapsedSeconds int64               `json:"live_elapsed_seconds"`
}

type DayRecordResponse struct {
	Date          string  `json:"date"`
	FirstIn       *string `json:"first_in,omitempty"`
	LastOut       *string `json:"last_out,omitempty"`
	WorkedSeconds *int64  `json:"worked_seconds,omitempty"`
	Location      *string `json:"location,omitempty"`
}
