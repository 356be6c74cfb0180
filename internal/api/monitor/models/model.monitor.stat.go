package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MonitorDailyStat là thống kê theo ngày của một task: số video/bình luận mới
// và phân bố theo category. Worker thống kê upsert theo (taskId, date) —
// compound unique index bảo đảm chạy lại không tạo bản ghi trùng.
type MonitorDailyStat struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	MonitorTaskID primitive.ObjectID `json:"monitorTaskId" bson:"monitorTaskId" index:"compound:taskDate_unique"`
	Date          string             `json:"date" bson:"date" index:"compound:taskDate_unique"` // Ngày thống kê, dạng YYYY-MM-DD (UTC)

	NewVideos   int64 `json:"newVideos" bson:"newVideos"`
	NewComments int64 `json:"newComments" bson:"newComments"`

	// Phân bố bình luận mới theo category trong ngày
	CategoryCounts map[string]int64 `json:"categoryCounts" bson:"categoryCounts"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
