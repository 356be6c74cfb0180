package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái của một task giám sát.
// Chuyển trạng thái: active ↔ stopped (lệnh start/stop), active → error
// (vượt ngưỡng lỗi liên tiếp), error → active (start lại sau khi xử lý sự cố).
const (
	TaskStatusActive  = "active"  // Đang giám sát (có vòng lặp chạy hoặc chờ resume)
	TaskStatusPaused  = "paused"  // Tạm dừng bởi người vận hành
	TaskStatusStopped = "stopped" // Dừng hẳn bởi người vận hành
	TaskStatusError   = "error"   // Tự dừng do lỗi liên tiếp vượt ngưỡng
)

// Giới hạn cấu hình task — giá trị ngoài khoảng bị từ chối lúc create/update.
const (
	MinCheckInterval      = 60   // Chu kỳ kiểm tra tối thiểu (giây)
	MaxCheckInterval      = 3600 // Chu kỳ kiểm tra tối đa (giây)
	DefaultCheckInterval  = 300  // Chu kỳ khi chưa đặt (khớp default tag)
	MinVideosPerCheck     = 1
	MaxVideosPerCheck     = 50
	DefaultVideosPerCheck = 10
)

// MonitorTask là một nhiệm vụ giám sát liên tục trên một tài khoản nguồn.
// Phần cấu hình do người vận hành đặt, phần runtime do scheduler cập nhật.
type MonitorTask struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AccountID   string             `json:"accountId" bson:"accountId" index:"single:1"` // Tài khoản nguồn được giám sát
	TaskName    string             `json:"taskName" bson:"taskName" index:"text"`
	Description string             `json:"description" bson:"description"`

	// Bề mặt giám sát
	MonitorVideos   bool `json:"monitorVideos" bson:"monitorVideos" default:"true"`
	MonitorComments bool `json:"monitorComments" bson:"monitorComments" default:"true"`
	MonitorMessages bool `json:"monitorMessages" bson:"monitorMessages"` // Chưa có adapter — giữ cấu hình để bật sau
	MonitorMentions bool `json:"monitorMentions" bson:"monitorMentions"` // Chưa có adapter — giữ cấu hình để bật sau

	// Bộ lọc bình luận
	Keywords         []string `json:"keywords" bson:"keywords"`               // Bình luận phải khớp ≥1 từ khóa (rỗng = nhận tất cả)
	ExcludeKeywords  []string `json:"excludeKeywords" bson:"excludeKeywords"` // Bình luận chứa từ khóa loại trừ bị bỏ
	MinCommentLength int      `json:"minCommentLength" bson:"minCommentLength"`
	MaxCommentLength int      `json:"maxCommentLength" bson:"maxCommentLength" default:"500"`
	FilterSpam       bool     `json:"filterSpam" bson:"filterSpam" default:"true"`

	// Tham số chu kỳ
	CheckInterval     int `json:"checkInterval" bson:"checkInterval" default:"300"`      // Giây giữa 2 chu kỳ
	MaxVideosPerCheck int `json:"maxVideosPerCheck" bson:"maxVideosPerCheck" default:"10"` // Số video tối đa xử lý mỗi chu kỳ

	// Chính sách reset bộ đếm lỗi khi chu kỳ thành công một phần
	// (lấy được video nhưng lỗi giữa chừng): true = coi như thành công,
	// false = vẫn đếm là lỗi liên tiếp.
	ResetOnPartialSuccess bool `json:"resetOnPartialSuccess" bson:"resetOnPartialSuccess"`

	// Runtime — chỉ scheduler ghi
	Status              string `json:"status" bson:"status" index:"single:1" default:"active"`
	LastCheckAt         int64  `json:"lastCheckAt" bson:"lastCheckAt"` // UnixMilli, 0 = chưa chạy lần nào
	NextCheckAt         int64  `json:"nextCheckAt" bson:"nextCheckAt"` // UnixMilli — thời điểm đến hạn chu kỳ kế
	ConsecutiveFailures int64  `json:"consecutiveFailures" bson:"consecutiveFailures"`
	LastError           string `json:"lastError" bson:"lastError"`

	// Bộ đếm tích lũy
	TotalVideosChecked int64 `json:"totalVideosChecked" bson:"totalVideosChecked"`
	TotalCommentsFound int64 `json:"totalCommentsFound" bson:"totalCommentsFound"`
	TotalRepliesSent   int64 `json:"totalRepliesSent" bson:"totalRepliesSent"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
