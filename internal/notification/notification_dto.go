package notification

type CreateNotificationRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	Message string `json:"message" binding:"required"`
	EventID string `json:"event_id"`
}

type NotificationResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}
