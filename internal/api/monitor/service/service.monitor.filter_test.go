// Package monitorsvc - Test bộ lọc và phân loại bình luận: spam, từ khóa,
// độ dài và bảng category.
package monitorsvc

import (
	"strings"
	"testing"

	monitormodels "douyin_monitor/internal/api/monitor/models"
)

func TestEvaluateComment_SpamBiLoai(t *testing.T) {
	cfg := FilterConfig{FilterSpam: true}

	spamContents := []string{
		"加我微信咨询详情",
		"专业刷粉丝，快速涨粉",
		"优惠信息见 www.example.com",
		"点击 https://spam.example.com 领取",
		"广告合作请私信",
	}
	for _, content := range spamContents {
		result := EvaluateComment(content, cfg)
		if result.Accept {
			t.Errorf("bình luận spam %q phải bị loại", content)
		}
		if result.Reason != ReasonSpam {
			t.Errorf("lý do loại của %q phải là %q, nhận được %q", content, ReasonSpam, result.Reason)
		}
		if !result.IsSpam {
			t.Errorf("IsSpam của %q phải là true", content)
		}
	}
}

func TestEvaluateComment_SpamKhongLocVanDanhDau(t *testing.T) {
	cfg := FilterConfig{FilterSpam: false}

	result := EvaluateComment("加我微信详聊", cfg)
	if !result.Accept {
		t.Error("tắt FilterSpam thì bình luận spam vẫn phải được thu nhận")
	}
	if !result.IsSpam {
		t.Error("IsSpam vẫn phải được đánh dấu kể cả khi không lọc")
	}
}

func TestEvaluateComment_DoDaiTheoRune(t *testing.T) {
	cfg := FilterConfig{MinLength: 5, MaxLength: 10}

	if result := EvaluateComment("你好吗", cfg); result.Accept || result.Reason != ReasonTooShort {
		t.Errorf("3 ký tự < MinLength=5 phải bị loại với lý do %q, nhận được %+v", ReasonTooShort, result)
	}
	// 5 ký tự Trung = 15 byte; đếm theo rune thì vừa đủ MinLength
	if result := EvaluateComment("你好吗你好", cfg); !result.Accept {
		t.Errorf("5 ký tự (rune) phải qua được MinLength=5, nhận được %+v", result)
	}
	if result := EvaluateComment(strings.Repeat("好", 11), cfg); result.Accept || result.Reason != ReasonTooLong {
		t.Errorf("11 ký tự > MaxLength=10 phải bị loại với lý do %q, nhận được %+v", ReasonTooLong, result)
	}
}

func TestEvaluateComment_TuKhoaLoaiTru(t *testing.T) {
	cfg := FilterConfig{ExcludeKeywords: []string{"转发"}}

	result := EvaluateComment("这是转发的内容", cfg)
	if result.Accept {
		t.Error("bình luận chứa từ khóa loại trừ phải bị loại")
	}
	if result.Reason != ReasonExcluded {
		t.Errorf("lý do loại phải là %q, nhận được %q", ReasonExcluded, result.Reason)
	}
}

func TestEvaluateComment_TuKhoaBatBuoc(t *testing.T) {
	cfg := FilterConfig{Keywords: []string{"合同", "律师"}}

	result := EvaluateComment("我想找律师帮忙看合同", cfg)
	if !result.Accept {
		t.Fatalf("bình luận khớp từ khóa phải được thu nhận, nhận được %+v", result)
	}
	if len(result.MatchedKeywords) != 2 {
		t.Errorf("phải khớp 2 từ khóa, nhận được %v", result.MatchedKeywords)
	}

	result = EvaluateComment("今天天气不错", cfg)
	if result.Accept || result.Reason != ReasonNoKeywordMatch {
		t.Errorf("bình luận không khớp từ khóa nào phải bị loại với lý do %q, nhận được %+v", ReasonNoKeywordMatch, result)
	}
}

func TestClassifyComment_BangPhanLoai(t *testing.T) {
	cases := []struct {
		content  string
		expected string
	}{
		{"我想起诉对方，合同有问题", monitormodels.CategoryLegalInquiry},
		{"需要法律帮助，请联系我", monitormodels.CategoryLegalInquiry},
		{"谢谢分享，很专业", monitormodels.CategoryPraise},
		{"讲得真棒", monitormodels.CategoryPraise},
		{"这个说法不对吧", monitormodels.CategoryObjection},
		{"我不同意你的观点", monitormodels.CategoryObjection},
		{"这种情况怎么处理？", monitormodels.CategoryQuestion},
		{"can you explain more?", monitormodels.CategoryQuestion},
		{"今天天气不错", monitormodels.CategoryGeneral},
	}

	for _, tc := range cases {
		if got := ClassifyComment(tc.content); got != tc.expected {
			t.Errorf("ClassifyComment(%q) = %q, mong đợi %q", tc.content, got, tc.expected)
		}
	}
}

func TestClassifyComment_UuTienPhapLyTruocKhenNgoi(t *testing.T) {
	// Nội dung vừa có từ pháp lý vừa có từ khen: bảng ưu tiên chọn pháp lý
	got := ClassifyComment("谢谢，我想咨询合同的问题")
	if got != monitormodels.CategoryLegalInquiry {
		t.Errorf("nội dung chứa cả từ pháp lý và khen ngợi phải phân loại %q, nhận được %q", monitormodels.CategoryLegalInquiry, got)
	}
}

func TestEvaluateComment_TatDinh(t *testing.T) {
	cfg := FilterConfig{MinLength: 2, FilterSpam: true, Keywords: []string{"合同"}}
	content := "合同纠纷怎么办？"

	first := EvaluateComment(content, cfg)
	for i := 0; i < 10; i++ {
		again := EvaluateComment(content, cfg)
		if again.Accept != first.Accept || again.Category != first.Category || again.Reason != first.Reason {
			t.Fatalf("EvaluateComment không tất định: lần đầu %+v, lần sau %+v", first, again)
		}
	}
}

func TestMatchKeywords_KhongPhanBietHoaThuong(t *testing.T) {
	matched := MatchKeywords("Hợp Đồng LAO ĐỘNG", []string{"hợp đồng"})
	if len(matched) != 1 {
		t.Errorf("so khớp từ khóa phải không phân biệt hoa thường, nhận được %v", matched)
	}
	if MatchKeywords("nội dung bất kỳ", nil) != nil {
		t.Error("danh sách từ khóa rỗng phải trả về nil")
	}
}
