package dto

type NotificationMeta struct {
	UnreadCount int64 `json:"unread_count"`
}

type BulkNotificationResult struct {
	Affected int64 `json:"affected"`
}
