// Package monitorsvc - Test các hàm thuần của lifecycle service: tính hạn
// kiểm tra đầu tiên và kiểm tra giới hạn cấu hình.
package monitorsvc

import (
	"errors"
	"testing"
	"time"

	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
)

func TestFirstCheckDue_MotChuKySauKhiKichHoat(t *testing.T) {
	now := time.Now()

	got := firstCheckDue(now, 600)
	want := now.UnixMilli() + 600*1000
	if got != want {
		t.Errorf("hạn kiểm tra đầu tiên phải là now + checkInterval, nhận được %d, mong đợi %d", got, want)
	}
	if got <= now.UnixMilli() {
		t.Error("task mới tạo/start không được đến hạn ngay lập tức")
	}
}

func TestFirstCheckDue_IntervalChuaDatDungDefault(t *testing.T) {
	now := time.Now()

	got := firstCheckDue(now, 0)
	want := now.UnixMilli() + int64(monitormodels.DefaultCheckInterval)*1000
	if got != want {
		t.Errorf("interval chưa đặt phải dùng default %ds, nhận được %d, mong đợi %d",
			monitormodels.DefaultCheckInterval, got, want)
	}
}

func TestValidateTaskBounds(t *testing.T) {
	cases := []struct {
		name          string
		checkInterval int
		maxVideos     int
		wantErr       bool
	}{
		{"hợp lệ", 300, 10, false},
		{"chưa đặt là hợp lệ", 0, 0, false},
		{"biên dưới", monitormodels.MinCheckInterval, monitormodels.MinVideosPerCheck, false},
		{"biên trên", monitormodels.MaxCheckInterval, monitormodels.MaxVideosPerCheck, false},
		{"interval quá ngắn", 59, 10, true},
		{"interval quá dài", 3601, 10, true},
		{"quá nhiều video", 300, 51, true},
	}

	for _, tc := range cases {
		err := validateTaskBounds(tc.checkInterval, tc.maxVideos)
		if tc.wantErr && err == nil {
			t.Errorf("%s: phải bị từ chối", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: không được lỗi, nhận được %v", tc.name, err)
		}
		if tc.wantErr && err != nil && !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("%s: lỗi giới hạn phải thuộc nhóm dữ liệu đầu vào, nhận được %v", tc.name, err)
		}
	}
}
