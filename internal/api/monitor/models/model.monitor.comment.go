package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phân loại nội dung bình luận — bảng phân loại theo thứ tự ưu tiên,
// nhãn tiếng Trung khớp với hệ thống trả lời phía sau.
const (
	CategoryLegalInquiry = "法律咨询" // Câu hỏi chuyên môn pháp lý
	CategoryPraise       = "感谢赞扬" // Cảm ơn, khen ngợi
	CategoryObjection    = "质疑反驳" // Nghi ngờ, phản bác
	CategoryQuestion     = "咨询问题" // Câu hỏi chung (kết thúc bằng dấu hỏi)
	CategoryGeneral      = "普通互动" // Tương tác thường
)

// DyComment là một bình luận đã thu thập và phân loại.
// CommentID là id phía nguồn — unique index là lưới an toàn cuối
// của idempotent ingestion.
type DyComment struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	CommentID     string              `json:"commentId" bson:"commentId" index:"unique"` // ID bình luận phía nguồn
	MonitorTaskID primitive.ObjectID  `json:"monitorTaskId" bson:"monitorTaskId" index:"single:1"`
	VideoID       *primitive.ObjectID `json:"videoId,omitempty" bson:"videoId,omitempty" index:"single:1"` // Video chứa bình luận (nil với nguồn ngoài video)

	Content    string `json:"content" bson:"content" index:"text"`
	AuthorName string `json:"authorName" bson:"authorName"`
	LikeCount  int64  `json:"likeCount" bson:"likeCount"`

	// Kết quả phân loại
	Category        string   `json:"category" bson:"category" index:"single:1"`
	KeywordsMatched []string `json:"keywordsMatched" bson:"keywordsMatched"`
	IsSpam          bool     `json:"isSpam" bson:"isSpam"`

	// Liên kết với hệ thống trả lời (ghi ngược qua API)
	IsProcessed  bool   `json:"isProcessed" bson:"isProcessed" index:"single:1"`
	IsReplied    bool   `json:"isReplied" bson:"isReplied"`
	ReplyContent string `json:"replyContent" bson:"replyContent"`
	RepliedAt    int64  `json:"repliedAt" bson:"repliedAt"` // UnixMilli

	CommentAt int64 `json:"commentAt" bson:"commentAt"` // Thời điểm phát hiện bình luận (UnixMilli)

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
