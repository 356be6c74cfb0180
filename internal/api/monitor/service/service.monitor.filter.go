package monitorsvc

import (
	"regexp"
	"strings"
	"unicode/utf8"

	monitormodels "douyin_monitor/internal/api/monitor/models"
)

// Bộ lọc và phân loại bình luận — thuần túy và tất định: cùng nội dung,
// cùng cấu hình luôn cho cùng kết quả, không truy cập DB hay clock.

// FilterConfig là cấu hình lọc trích từ MonitorTask.
type FilterConfig struct {
	MinLength       int      // Độ dài tối thiểu (rune); 0 = không giới hạn dưới
	MaxLength       int      // Độ dài tối đa (rune); 0 = không giới hạn trên
	FilterSpam      bool     // Có loại bình luận spam không
	Keywords        []string // Phải khớp ≥1 từ khóa (rỗng = nhận tất cả)
	ExcludeKeywords []string // Chứa từ khóa loại trừ thì bỏ
}

// FilterResult là kết quả đánh giá một bình luận.
type FilterResult struct {
	Accept          bool     // Bình luận có được thu nhận không
	Reason          string   // Lý do loại (rỗng nếu Accept)
	Category        string   // Category khi Accept
	MatchedKeywords []string // Các từ khóa include đã khớp
	IsSpam          bool     // Khớp chữ ký spam (đánh dấu cả khi không lọc)
}

// Lý do loại bình luận
const (
	ReasonTooShort       = "too_short"
	ReasonTooLong        = "too_long"
	ReasonSpam           = "spam"
	ReasonExcluded       = "excluded_keyword"
	ReasonNoKeywordMatch = "no_keyword_match"
)

// Chữ ký spam: mời chào liên hệ qua WeChat, quảng cáo, mua bán follower,
// URL trần. Khớp một mẫu là đủ.
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`加.*微信`),
	regexp.MustCompile(`联系.*微信`),
	regexp.MustCompile(`咨询.*微信`),
	regexp.MustCompile(`广告`),
	regexp.MustCompile(`推广`),
	regexp.MustCompile(`刷.*粉`),
	regexp.MustCompile(`买.*粉`),
	regexp.MustCompile(`代.*刷`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`(?i)http[s]?://`),
}

// Bảng phân loại theo thứ tự ưu tiên: mục khớp đầu tiên thắng.
var (
	legalKeywords  = []string{"咨询", "法律", "律师", "维权", "起诉", "合同", "纠纷"}
	praiseKeywords = []string{"谢谢", "感谢", "厉害", "专业", "棒", "赞"}
	doubtKeywords  = []string{"不对", "错误", "质疑", "反对", "不同意"}
)

// EvaluateComment đánh giá một bình luận theo cấu hình lọc của task.
// Thứ tự kiểm tra cố định: độ dài → spam → từ khóa loại trừ → từ khóa bắt buộc
// → phân loại.
func EvaluateComment(content string, cfg FilterConfig) FilterResult {
	result := FilterResult{
		IsSpam:          IsSpamComment(content),
		MatchedKeywords: MatchKeywords(content, cfg.Keywords),
	}

	length := utf8.RuneCountInString(content)
	if cfg.MinLength > 0 && length < cfg.MinLength {
		result.Reason = ReasonTooShort
		return result
	}
	if cfg.MaxLength > 0 && length > cfg.MaxLength {
		result.Reason = ReasonTooLong
		return result
	}

	if cfg.FilterSpam && result.IsSpam {
		result.Reason = ReasonSpam
		return result
	}

	contentLower := strings.ToLower(content)
	for _, keyword := range cfg.ExcludeKeywords {
		if keyword != "" && strings.Contains(contentLower, strings.ToLower(keyword)) {
			result.Reason = ReasonExcluded
			return result
		}
	}

	if len(cfg.Keywords) > 0 && len(result.MatchedKeywords) == 0 {
		result.Reason = ReasonNoKeywordMatch
		return result
	}

	result.Accept = true
	result.Category = ClassifyComment(content)
	return result
}

// IsSpamComment kiểm tra nội dung có khớp chữ ký spam không.
func IsSpamComment(content string) bool {
	for _, pattern := range spamPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}

// ClassifyComment phân loại nội dung bình luận theo bảng ưu tiên cố định.
func ClassifyComment(content string) string {
	contentLower := strings.ToLower(content)

	for _, keyword := range legalKeywords {
		if strings.Contains(contentLower, keyword) {
			return monitormodels.CategoryLegalInquiry
		}
	}
	for _, keyword := range praiseKeywords {
		if strings.Contains(contentLower, keyword) {
			return monitormodels.CategoryPraise
		}
	}
	for _, keyword := range doubtKeywords {
		if strings.Contains(contentLower, keyword) {
			return monitormodels.CategoryObjection
		}
	}
	if strings.HasSuffix(content, "?") || strings.HasSuffix(content, "？") {
		return monitormodels.CategoryQuestion
	}
	return monitormodels.CategoryGeneral
}

// MatchKeywords trả về các từ khóa xuất hiện trong nội dung (so khớp substring,
// không phân biệt hoa thường). Trả về nil nếu không khớp từ nào.
func MatchKeywords(content string, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	contentLower := strings.ToLower(content)
	var matched []string
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(contentLower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return matched
}
