package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DyVideo là một video đã phát hiện trên tài khoản được giám sát.
// VideoID là id phía nguồn — unique index bảo đảm mỗi video ngoài
// chỉ có một bản ghi, là lưới an toàn cuối của idempotent ingestion.
type DyVideo struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VideoID       string             `json:"videoId" bson:"videoId" index:"unique"` // ID video phía nguồn
	MonitorTaskID primitive.ObjectID `json:"monitorTaskId" bson:"monitorTaskId" index:"single:1"`

	URL        string `json:"url" bson:"url"`
	Title      string `json:"title" bson:"title" index:"text"`
	AuthorName string `json:"authorName" bson:"authorName"`

	// Chỉ số tương tác — làm mới ở các chu kỳ sau
	ViewCount    int64 `json:"viewCount" bson:"viewCount"`
	LikeCount    int64 `json:"likeCount" bson:"likeCount"`
	CommentCount int64 `json:"commentCount" bson:"commentCount"`
	ShareCount   int64 `json:"shareCount" bson:"shareCount"`

	IsMonitored     bool  `json:"isMonitored" bson:"isMonitored" default:"true"`
	LastMonitoredAt int64 `json:"lastMonitoredAt" bson:"lastMonitoredAt"` // UnixMilli

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
