package leave

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	FromDate    string `json:"from_date" binding:"required"`
	ToDate      string `json:"to_date" binding:"required"`
	HalfDay     bool   `json:"half_day"`
	Reason      string `json:"reason"`
}

type LeaveResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	LeaveTypeCode string `json:"leave_type_code,omitempty"`
	LeaveTypeName string `json:"leave_type_name,omitempty"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
	HalfDay       bool   `json:"half_day"`
	Reason        string `json:"reason,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

type LeaveTypeResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	AllowsHalfDay bool    `json:"allows_half_day"`
	Balance       float64 `json:"balance"`
}

type BalanceResponse struct {
	UserID      string  `json:"user_id"`
	LeaveTypeID string  `json:"leave_type_id"`
	Year        int     `json:"year"`
	Balance     float64 `json:"balance"`
}
