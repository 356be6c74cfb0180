// Package registry - Test cơ chế at-most-one của RegisterIfAbsent và
// cleanup khi Clear.
package registry

import (
	"errors"
	"sync"
	"testing"
)

func TestRegisterIfAbsent_ChiMotGoroutineThanhCong(t *testing.T) {
	r := NewRegistry[int]()

	const workers = 32
	var wg sync.WaitGroup
	registered := make(chan int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ok, err := r.RegisterIfAbsent("task-1", id)
			if err != nil {
				t.Errorf("RegisterIfAbsent lỗi: %v", err)
				return
			}
			if ok {
				registered <- id
			}
		}(i)
	}
	wg.Wait()
	close(registered)

	var winners []int
	for id := range registered {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Fatalf("phải có đúng 1 goroutine đăng ký thành công, nhận được %d", len(winners))
	}
	if got, exists := r.Get("task-1"); !exists || got != winners[0] {
		t.Errorf("item trong registry phải là của goroutine thắng cuộc, nhận được %d (exists=%v)", got, exists)
	}
	if r.Len() != 1 {
		t.Errorf("registry phải chứa đúng 1 item, nhận được %d", r.Len())
	}
}

func TestRegisterIfAbsent_TenRongBiTuChoi(t *testing.T) {
	r := NewRegistry[string]()
	if _, err := r.RegisterIfAbsent("", "x"); err == nil {
		t.Error("name rỗng phải trả về lỗi")
	}
}

func TestClear_GoiCleanupTruocKhiXoa(t *testing.T) {
	r := NewRegistry[string]()
	if _, err := r.Register("task-1", "handle"); err != nil {
		t.Fatalf("Register lỗi: %v", err)
	}

	var cleaned []string
	deleted, err := r.Clear("task-1", func(item string) error {
		cleaned = append(cleaned, item)
		return nil
	})
	if err != nil || !deleted {
		t.Fatalf("Clear phải xóa item và không lỗi, nhận được deleted=%v err=%v", deleted, err)
	}
	if len(cleaned) != 1 || cleaned[0] != "handle" {
		t.Errorf("cleanup phải được gọi với item đã đăng ký, nhận được %v", cleaned)
	}
	if _, exists := r.Get("task-1"); exists {
		t.Error("item phải biến mất sau Clear")
	}
}

func TestClear_CleanupLoiThiGiuNguyenItem(t *testing.T) {
	r := NewRegistry[string]()
	if _, err := r.Register("task-1", "handle"); err != nil {
		t.Fatalf("Register lỗi: %v", err)
	}

	deleted, err := r.Clear("task-1", func(string) error {
		return errors.New("không giải phóng được")
	})
	if err == nil || deleted {
		t.Fatalf("cleanup lỗi thì Clear phải trả lỗi và không xóa, nhận được deleted=%v err=%v", deleted, err)
	}
	if _, exists := r.Get("task-1"); !exists {
		t.Error("cleanup lỗi thì item phải còn trong registry")
	}
}

func TestClear_ItemKhongTonTai(t *testing.T) {
	r := NewRegistry[string]()
	deleted, err := r.Clear("ghost", nil)
	if err != nil {
		t.Fatalf("Clear item không tồn tại không được lỗi: %v", err)
	}
	if deleted {
		t.Error("Clear item không tồn tại phải trả về deleted=false")
	}
}

func TestClearAll_DemVaGoiCleanupTungItem(t *testing.T) {
	r := NewRegistry[int]()
	for i, name := range []string{"a", "b", "c"} {
		if _, err := r.Register(name, i); err != nil {
			t.Fatalf("Register lỗi: %v", err)
		}
	}

	var mu sync.Mutex
	cleaned := 0
	count, err := r.ClearAll(func(int) error {
		mu.Lock()
		cleaned++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("ClearAll lỗi: %v", err)
	}
	if count != 3 || cleaned != 3 {
		t.Errorf("ClearAll phải xóa và cleanup 3 items, nhận được count=%d cleaned=%d", count, cleaned)
	}
	if r.Len() != 0 {
		t.Errorf("registry phải rỗng sau ClearAll, nhận được %d", r.Len())
	}
}
