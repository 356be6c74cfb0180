// Package monitorsvc - Test vòng lặp giám sát: escalate theo chuỗi lỗi,
// ngủ theo lát, cooldown khi bị rate limit và chính sách reset khi thành
// công một phần.
package monitorsvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/registry"
)

// fakeTaskStore là TaskStore in-memory cho test vòng lặp.
type fakeTaskStore struct {
	mu   sync.Mutex
	task monitormodels.MonitorTask

	failureCalls []int64 // failures truyền vào mỗi lần RecordCycleFailure
	nextCheckAts []int64 // nextCheckAt truyền vào mỗi lần RecordCycleFailure
	successCalls int
	markedError  bool

	// freezeDue giữ NextCheckAt = 0 để chu kỳ luôn đến hạn ngay
	freezeDue bool
	// stopAfterFailures đổi task sang stopped sau N lần RecordCycleFailure
	stopAfterFailures int
}

func (f *fakeTaskStore) Reload(_ context.Context, _ primitive.ObjectID) (monitormodels.MonitorTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.task, nil
}

func (f *fakeTaskStore) RecordCycleSuccess(_ context.Context, _ primitive.ObjectID, _ CycleResult, checkedAt, nextCheckAt int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successCalls++
	f.task.ConsecutiveFailures = 0
	f.task.LastCheckAt = checkedAt
	if !f.freezeDue {
		f.task.NextCheckAt = nextCheckAt
	}
	return nil
}

func (f *fakeTaskStore) RecordCycleFailure(_ context.Context, _ primitive.ObjectID, failures int64, lastError string, nextCheckAt int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failureCalls = append(f.failureCalls, failures)
	f.nextCheckAts = append(f.nextCheckAts, nextCheckAt)
	f.task.ConsecutiveFailures = failures
	f.task.LastError = lastError
	if !f.freezeDue {
		f.task.NextCheckAt = nextCheckAt
	}
	if f.stopAfterFailures > 0 && len(f.failureCalls) >= f.stopAfterFailures {
		f.task.Status = monitormodels.TaskStatusStopped
	}
	return nil
}

func (f *fakeTaskStore) MarkError(_ context.Context, _ primitive.ObjectID, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedError = true
	f.task.Status = monitormodels.TaskStatusError
	f.task.LastError = lastError
	return nil
}

// fakeRunner đếm số chu kỳ và trả kết quả theo hàm cấu hình.
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (CycleResult, error)
}

func (f *fakeRunner) RunCycle(_ context.Context, _ *monitormodels.MonitorTask) (CycleResult, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeAlerter ghi nhận cảnh báo escalate và mất session.
type fakeAlerter struct {
	mu         sync.Mutex
	calls      int
	loginCalls int
}

func (f *fakeAlerter) NotifyTaskError(_ context.Context, _ *monitormodels.MonitorTask, _ string) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAlerter) NotifyLoginRequired(_ context.Context, _ string) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
}

func activeTask() monitormodels.MonitorTask {
	return monitormodels.MonitorTask{
		ID:            primitive.NewObjectID(),
		TaskName:      "test-task",
		Status:        monitormodels.TaskStatusActive,
		CheckInterval: 60,
		NextCheckAt:   0,
	}
}

// newTestLoop tạo loop với clock cố định và sleep không chờ thật.
func newTestLoop(store *fakeTaskStore, runner *fakeRunner, alerter *fakeAlerter, threshold int64) *MonitorLoop {
	loop := NewMonitorLoop(store.task.ID, store, runner, alerter, threshold, 60*time.Second)
	fixed := time.Now()
	loop.now = func() time.Time { return fixed }
	loop.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return loop
}

func TestMonitorLoop_EscalateSau5LoiLienTiep(t *testing.T) {
	store := &fakeTaskStore{task: activeTask(), freezeDue: true}
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, errors.New("nguồn không phản hồi")
	}}
	alerter := &fakeAlerter{}

	loop := newTestLoop(store, runner, alerter, 5)
	loop.run(context.Background())

	if got := runner.callCount(); got != 5 {
		t.Errorf("vòng lặp phải dừng sau đúng 5 chu kỳ lỗi, không có lần thứ 6; chạy %d lần", got)
	}
	if !store.markedError {
		t.Error("task phải được chuyển sang trạng thái error")
	}
	if store.task.Status != monitormodels.TaskStatusError {
		t.Errorf("status phải là %q, nhận được %q", monitormodels.TaskStatusError, store.task.Status)
	}
	if alerter.calls != 1 {
		t.Errorf("phải gửi đúng 1 cảnh báo escalate, nhận được %d", alerter.calls)
	}
	// 4 lần đầu ghi failure, lần thứ 5 escalate thay vì ghi
	if len(store.failureCalls) != 4 {
		t.Errorf("phải có 4 lần RecordCycleFailure trước khi escalate, nhận được %d", len(store.failureCalls))
	}
	for i, failures := range store.failureCalls {
		if failures != int64(i+1) {
			t.Errorf("chuỗi lỗi lần %d phải là %d, nhận được %d", i+1, i+1, failures)
		}
	}
}

func TestMonitorLoop_ThanhCongResetChuoiLoi(t *testing.T) {
	store := &fakeTaskStore{task: activeTask(), freezeDue: true}
	store.task.ConsecutiveFailures = 3
	runner := &fakeRunner{fn: func(call int) (CycleResult, error) {
		if call == 1 {
			return CycleResult{VideosSeen: 2}, nil
		}
		return CycleResult{}, errors.New("lỗi sau khi đã thành công")
	}}
	// threshold 2: sau thành công, cần đúng 2 lỗi mới escalate — chứng tỏ
	// chuỗi lỗi đã reset về 0
	loop := newTestLoop(store, runner, &fakeAlerter{}, 2)
	loop.run(context.Background())

	if store.successCalls != 1 {
		t.Fatalf("phải có 1 chu kỳ thành công, nhận được %d", store.successCalls)
	}
	if got := runner.callCount(); got != 3 {
		t.Errorf("1 thành công + 2 lỗi tới ngưỡng: phải chạy 3 chu kỳ, nhận được %d", got)
	}
}

func TestMonitorLoop_ThoatKhiTaskKhongActive(t *testing.T) {
	store := &fakeTaskStore{task: activeTask()}
	store.task.Status = monitormodels.TaskStatusPaused
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, nil
	}}

	loop := newTestLoop(store, runner, &fakeAlerter{}, 5)
	loop.run(context.Background())

	if runner.callCount() != 0 {
		t.Error("task không active thì không được chạy chu kỳ nào")
	}
}

func TestMonitorLoop_HuyTrongLucNgu(t *testing.T) {
	store := &fakeTaskStore{task: activeTask()}
	// Hạn kiểm tra ở tương lai xa: vòng lặp sẽ ngủ chờ
	store.task.NextCheckAt = time.Now().Add(time.Hour).UnixMilli()
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, nil
	}}

	loop := NewMonitorLoop(store.task.ID, store, runner, &fakeAlerter{}, 5, 60*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx, nil)

	cancel()
	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("vòng lặp phải thoát ngay khi context bị hủy trong lúc ngủ")
	}
	if runner.callCount() != 0 {
		t.Error("chưa đến hạn thì không được chạy chu kỳ")
	}
}

func TestMonitorLoop_NguTheoLatKhongQuaMaxSlice(t *testing.T) {
	store := &fakeTaskStore{task: activeTask()}
	fixed := time.Now()
	// Hạn kiểm tra còn 300 giây nữa, lát ngủ tối đa 60 giây
	store.task.NextCheckAt = fixed.Add(300 * time.Second).UnixMilli()

	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, nil
	}}
	loop := NewMonitorLoop(store.task.ID, store, runner, &fakeAlerter{}, 5, 60*time.Second)
	loop.now = func() time.Time { return fixed }

	var slept []time.Duration
	loop.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		// Dừng task sau lát ngủ đầu tiên để vòng lặp thoát
		store.mu.Lock()
		store.task.Status = monitormodels.TaskStatusStopped
		store.mu.Unlock()
		return nil
	}

	loop.run(context.Background())

	if len(slept) != 1 {
		t.Fatalf("phải có đúng 1 lát ngủ trước khi thoát, nhận được %d", len(slept))
	}
	if slept[0] > 60*time.Second {
		t.Errorf("lát ngủ phải bị chặn ở 60s, nhận được %s", slept[0])
	}
}

func TestMonitorLoop_RateLimitLuiHanTheoCooldown(t *testing.T) {
	store := &fakeTaskStore{task: activeTask(), freezeDue: true, stopAfterFailures: 1}
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, common.NewRateLimited(120 * time.Second)
	}}

	loop := newTestLoop(store, runner, &fakeAlerter{}, 5)
	nowMs := loop.now().UnixMilli()
	loop.run(context.Background())

	if len(store.nextCheckAts) != 1 {
		t.Fatalf("phải có 1 lần RecordCycleFailure, nhận được %d", len(store.nextCheckAts))
	}
	minNext := nowMs + (120 * time.Second).Milliseconds()
	if store.nextCheckAts[0] < minNext {
		t.Errorf("bị rate limit thì hạn kiểm tra tiếp theo phải ≥ now+cooldown (%d), nhận được %d", minNext, store.nextCheckAts[0])
	}
}

func TestMonitorLoop_ThanhCongMotPhanResetKhiBatChinhSach(t *testing.T) {
	store := &fakeTaskStore{task: activeTask(), freezeDue: true, stopAfterFailures: 1}
	store.task.ConsecutiveFailures = 3
	store.task.ResetOnPartialSuccess = true
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{VideosSeen: 4}, errors.New("lỗi giữa chừng")
	}}

	loop := newTestLoop(store, runner, &fakeAlerter{}, 5)
	loop.run(context.Background())

	if len(store.failureCalls) != 1 || store.failureCalls[0] != 1 {
		t.Errorf("thành công một phần với chính sách reset phải ghi chuỗi lỗi = 1, nhận được %v", store.failureCalls)
	}
}

func TestMonitorLoop_DungLoopDangNguKhongBiKet(t *testing.T) {
	store := &fakeTaskStore{task: activeTask()}
	// Hạn kiểm tra ở tương lai xa: loop sẽ ngủ chờ khi bị dừng
	store.task.NextCheckAt = time.Now().Add(time.Hour).UnixMilli()
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, nil
	}}

	loops := registry.NewRegistry[*MonitorLoop]()
	loop := NewMonitorLoop(store.task.ID, store, runner, &fakeAlerter{}, 5, 60*time.Second)
	key := store.task.ID.Hex()
	if _, err := loops.RegisterIfAbsent(key, loop); err != nil {
		t.Fatalf("RegisterIfAbsent lỗi: %v", err)
	}
	loop.Start(context.Background(), func() {
		_, _ = loops.Clear(key, nil)
	})

	// Trình tự dừng của lifecycle service: gỡ handle khỏi registry trước,
	// chờ loop thoát sau — không chờ dưới lock của registry
	stopped := make(chan struct{})
	go func() {
		if h, exists := loops.Get(key); exists {
			_, _ = loops.Clear(key, nil)
			h.Stop()
		}
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("dừng loop đang chạy phải trả về, không được kẹt")
	}
	if loops.Len() != 0 {
		t.Errorf("registry phải rỗng sau khi dừng, còn %d item", loops.Len())
	}
}

func TestMonitorLoop_ShutdownChoLoopThoatKhongBiKet(t *testing.T) {
	store := &fakeTaskStore{task: activeTask()}
	store.task.NextCheckAt = time.Now().Add(time.Hour).UnixMilli()
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, nil
	}}

	loops := registry.NewRegistry[*MonitorLoop]()
	loop := NewMonitorLoop(store.task.ID, store, runner, &fakeAlerter{}, 5, 60*time.Second)
	key := store.task.ID.Hex()
	if _, err := loops.RegisterIfAbsent(key, loop); err != nil {
		t.Fatalf("RegisterIfAbsent lỗi: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx, func() {
		_, _ = loops.Clear(key, nil)
	})

	// Shutdown: hủy context chung rồi chờ từng loop thoát qua Done.
	// Loop phải đóng done trước khi onExit chạm vào registry, nếu không
	// ClearAll giữ lock sẽ chờ vô hạn
	finished := make(chan struct{})
	go func() {
		cancel()
		_, _ = loops.ClearAll(func(l *MonitorLoop) error {
			<-l.Done()
			return nil
		})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown phải thoát sau khi mọi loop kết thúc, không được kẹt")
	}
}

func TestMonitorLoop_BaoMatSessionNgayLoiDauTien(t *testing.T) {
	store := &fakeTaskStore{task: activeTask(), freezeDue: true, stopAfterFailures: 2}
	store.task.AccountID = "acc-1"
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{}, common.ErrLoginRequired
	}}
	alerter := &fakeAlerter{}

	loop := newTestLoop(store, runner, alerter, 5)
	loop.run(context.Background())

	if alerter.loginCalls != 1 {
		t.Errorf("mất session phải báo đúng 1 lần ở lỗi đầu của chuỗi, nhận được %d", alerter.loginCalls)
	}
}

func TestMonitorLoop_ThanhCongMotPhanKhongResetKhiTatChinhSach(t *testing.T) {
	store := &fakeTaskStore{task: activeTask(), freezeDue: true, stopAfterFailures: 1}
	store.task.ConsecutiveFailures = 3
	store.task.ResetOnPartialSuccess = false
	runner := &fakeRunner{fn: func(int) (CycleResult, error) {
		return CycleResult{VideosSeen: 4}, errors.New("lỗi giữa chừng")
	}}

	loop := newTestLoop(store, runner, &fakeAlerter{}, 5)
	loop.run(context.Background())

	if len(store.failureCalls) != 1 || store.failureCalls[0] != 4 {
		t.Errorf("tắt chính sách reset thì chuỗi lỗi phải cộng dồn thành 4, nhận được %v", store.failureCalls)
	}
}
