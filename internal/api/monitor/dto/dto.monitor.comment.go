package monitordto

// CommentMarkRepliedInput dữ liệu hệ thống trả lời ghi ngược sau khi đã gửi trả lời.
type CommentMarkRepliedInput struct {
	ReplyContent string `json:"replyContent" validate:"required,min=1,max=2000"`
}
