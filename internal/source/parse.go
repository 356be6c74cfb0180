package source

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var nonDigitExpr = regexp.MustCompile(`[^\d]`)

// ParseCount chuyển text số đếm hiển thị trên trang thành số nguyên.
// Nguồn hiển thị số lớn với hậu tố 万 (x10000) và 千 (x1000),
// ví dụ "1.2万" → 12000. Text không parse được trả về 0.
func ParseCount(text string) int64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if strings.Contains(text, "万") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(text, "万", "")), 64)
		if err != nil {
			return 0
		}
		return int64(v * 10000)
	}

	if strings.Contains(text, "千") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(text, "千", "")), 64)
		if err != nil {
			return 0
		}
		return int64(v * 1000)
	}

	digits := nonDigitExpr.ReplaceAllString(text, "")
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractVideoID trích id video từ URL.
// Dạng chuẩn: https://www.douyin.com/video/<id>?query, lấy phần sau /video/
// và cắt query. URL không theo dạng chuẩn thì lấy segment cuối của path.
// Trả về chuỗi rỗng nếu không trích được gì.
func ExtractVideoID(videoURL string) string {
	if idx := strings.Index(videoURL, "/video/"); idx >= 0 {
		id := videoURL[idx+len("/video/"):]
		if q := strings.IndexAny(id, "?#"); q >= 0 {
			id = id[:q]
		}
		return strings.Trim(id, "/")
	}

	parsed, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}
