// Package source chứa adapter lấy dữ liệu video/bình luận từ nguồn nội dung
// bên ngoài (Douyin). Pipeline chỉ phụ thuộc interface Adapter — test dùng fake,
// production dùng DouyinAdapter.
package source

import "context"

// Video là một video lấy được từ nguồn, định danh bằng ExternalID (id phía nguồn).
type Video struct {
	ExternalID   string // ID video phía nguồn (trích từ URL /video/<id>)
	URL          string // URL đầy đủ của video
	Title        string
	AuthorName   string
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	ShareCount   int64
}

// Comment là một bình luận lấy được từ nguồn, định danh bằng ExternalID.
// Phần tử không có id ổn định phía nguồn bị adapter bỏ qua — id tự chế
// không đảm bảo idempotency giữa các chu kỳ.
type Comment struct {
	ExternalID string // data-id của phần tử bình luận phía nguồn
	Content    string
	AuthorName string
	LikeCount  int64
}

// Adapter là ranh giới giữa pipeline và nguồn nội dung.
// Lỗi trả về giữ nguyên phân loại: ErrLoginRequired, ErrRateLimited (kèm
// gợi ý cool-down trong Details), còn lại là ErrScraping.
type Adapter interface {
	// ListRecentVideos trả về tối đa limit video mới nhất của account.
	ListRecentVideos(ctx context.Context, accountID string, limit int) ([]Video, error)

	// ListComments trả về các bình luận hiện có trên trang video.
	ListComments(ctx context.Context, videoExternalID string) ([]Comment, error)
}
