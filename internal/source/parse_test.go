// Package source - Test chuẩn hóa số đếm kiểu Trung và trích video id từ URL.
package source

import "testing"

func TestParseCount(t *testing.T) {
	cases := []struct {
		text     string
		expected int64
	}{
		{"1.2万", 12000},
		{"3万", 30000},
		{"5千", 5000},
		{"2.5千", 2500},
		{"1234", 1234},
		{"1,234", 1234},
		{" 88 ", 88},
		{"", 0},
		{"暂无", 0},
	}

	for _, tc := range cases {
		if got := ParseCount(tc.text); got != tc.expected {
			t.Errorf("ParseCount(%q) = %d, mong đợi %d", tc.text, got, tc.expected)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		url      string
		expected string
	}{
		{"https://www.douyin.com/video/7301234567890", "7301234567890"},
		{"https://www.douyin.com/video/7301234567890?from=feed", "7301234567890"},
		{"https://www.douyin.com/video/7301234567890/", "7301234567890"},
		{"https://www.douyin.com/video/7301234567890#comments", "7301234567890"},
		// Không có /video/: lấy segment cuối của path
		{"https://v.douyin.com/abc123", "abc123"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ExtractVideoID(tc.url); got != tc.expected {
			t.Errorf("ExtractVideoID(%q) = %q, mong đợi %q", tc.url, got, tc.expected)
		}
	}
}
