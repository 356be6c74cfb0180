package monitorsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
)

// TaskStore là phần persistence mà vòng lặp giám sát cần từ MonitorTaskService.
// Tách interface để test vòng lặp bằng fake in-memory.
type TaskStore interface {
	// Reload đọc lại trạng thái task mới nhất từ DB
	Reload(ctx context.Context, id primitive.ObjectID) (monitormodels.MonitorTask, error)
	// RecordCycleSuccess ghi kết quả chu kỳ thành công: reset chuỗi lỗi,
	// cập nhật mốc kiểm tra và cộng dồn bộ đếm
	RecordCycleSuccess(ctx context.Context, id primitive.ObjectID, result CycleResult, checkedAt, nextCheckAt int64) error
	// RecordCycleFailure ghi chu kỳ lỗi: tăng chuỗi lỗi, lưu thông điệp lỗi
	RecordCycleFailure(ctx context.Context, id primitive.ObjectID, failures int64, lastError string, nextCheckAt int64) error
	// MarkError chuyển task sang trạng thái error (vòng lặp dừng hẳn)
	MarkError(ctx context.Context, id primitive.ObjectID, lastError string) error
}

// CycleRunner chạy một chu kỳ thu thập cho task.
type CycleRunner interface {
	RunCycle(ctx context.Context, task *monitormodels.MonitorTask) (CycleResult, error)
}

// Alerter gửi cảnh báo vận hành: task bị escalate sang error, hoặc tài khoản
// nguồn mất session (cần đăng nhập lại thủ công).
type Alerter interface {
	NotifyTaskError(ctx context.Context, task *monitormodels.MonitorTask, lastError string)
	NotifyLoginRequired(ctx context.Context, accountID string)
}

// MonitorLoop là vòng lặp giám sát của MỘT task, chạy trong goroutine riêng.
// Mỗi vòng: đọc lại task → thoát nếu không còn active → ngủ theo lát ngắn tới
// hạn kiểm tra → chạy chu kỳ → ghi kết quả. Ngủ theo lát (tối đa
// maxSleepSlice) để đổi trạng thái từ API có hiệu lực trong vòng một lát ngủ
// thay vì phải chờ hết check interval.
type MonitorLoop struct {
	TaskID primitive.ObjectID

	store   TaskStore
	runner  CycleRunner
	alerter Alerter

	failureThreshold int64         // Số lỗi liên tiếp trước khi chuyển error
	maxSleepSlice    time.Duration // Lát ngủ tối đa giữa 2 lần đọc lại task

	cancel context.CancelFunc
	done   chan struct{}

	// now/sleep thay được trong test
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewMonitorLoop tạo vòng lặp cho một task. failureThreshold ≤ 0 dùng 5,
// maxSleepSlice ≤ 0 dùng 60 giây.
func NewMonitorLoop(taskID primitive.ObjectID, store TaskStore, runner CycleRunner, alerter Alerter, failureThreshold int64, maxSleepSlice time.Duration) *MonitorLoop {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if maxSleepSlice <= 0 {
		maxSleepSlice = 60 * time.Second
	}
	return &MonitorLoop{
		TaskID:           taskID,
		store:            store,
		runner:           runner,
		alerter:          alerter,
		failureThreshold: failureThreshold,
		maxSleepSlice:    maxSleepSlice,
		done:             make(chan struct{}),
		now:              time.Now,
		sleep:            sleepCtx,
	}
}

// Start chạy vòng lặp trong goroutine mới. onExit (nếu có) được gọi đúng một
// lần khi vòng lặp kết thúc vì bất kỳ lý do gì — dùng để gỡ loop khỏi registry.
func (l *MonitorLoop) Start(parent context.Context, onExit func()) {
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	go func() {
		// done phải đóng trước khi onExit chạm vào registry: bên Stop/Shutdown
		// có thể đang chờ done trong lúc giữ lock của registry
		if onExit != nil {
			defer onExit()
		}
		defer cancel()
		defer close(l.done)
		l.run(ctx)
	}()
}

// Stop hủy context của vòng lặp và chờ goroutine thoát hẳn.
func (l *MonitorLoop) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	<-l.done
}

// Done đóng khi vòng lặp đã thoát.
func (l *MonitorLoop) Done() <-chan struct{} {
	return l.done
}

func (l *MonitorLoop) run(ctx context.Context) {
	log := logrus.WithField("taskId", l.TaskID.Hex())
	log.Info("🔍 [MONITOR] Bắt đầu vòng lặp giám sát")

	for {
		if ctx.Err() != nil {
			log.Info("🔍 [MONITOR] Vòng lặp bị hủy, thoát")
			return
		}

		task, err := l.store.Reload(ctx, l.TaskID)
		if err != nil {
			if errors.Is(err, common.ErrTaskNotFound) || errors.Is(err, common.ErrNotFound) {
				log.Warn("🔍 [MONITOR] Task không còn tồn tại, thoát vòng lặp")
				return
			}
			if ctx.Err() != nil {
				return
			}
			// Lỗi DB tạm thời: chờ một lát rồi thử lại, không tính vào chuỗi lỗi chu kỳ
			log.WithField("error", err).Warn("🔍 [MONITOR] Không đọc lại được task, thử lại sau")
			if l.sleep(ctx, l.maxSleepSlice) != nil {
				return
			}
			continue
		}

		if task.Status != monitormodels.TaskStatusActive {
			log.WithField("status", task.Status).Info("🔍 [MONITOR] Task không còn active, thoát vòng lặp")
			return
		}

		// Chưa đến hạn thì ngủ một lát rồi đọc lại task
		nowMs := l.now().UnixMilli()
		if task.NextCheckAt > nowMs {
			remaining := time.Duration(task.NextCheckAt-nowMs) * time.Millisecond
			if remaining > l.maxSleepSlice {
				remaining = l.maxSleepSlice
			}
			if l.sleep(ctx, remaining) != nil {
				return
			}
			continue
		}

		result, runErr := l.runner.RunCycle(ctx, &task)
		if runErr != nil && (errors.Is(runErr, context.Canceled) || ctx.Err() != nil) {
			return
		}

		if runErr == nil {
			checkedAt := l.now().UnixMilli()
			nextCheckAt := checkedAt + int64(task.CheckInterval)*1000
			if err := l.store.RecordCycleSuccess(ctx, l.TaskID, result, checkedAt, nextCheckAt); err != nil {
				log.WithField("error", err).Error("🔍 [MONITOR] Không ghi được kết quả chu kỳ")
			}
			continue
		}

		if exit := l.handleCycleFailure(ctx, &task, result, runErr, log); exit {
			return
		}
	}
}

// handleCycleFailure xử lý một chu kỳ lỗi: tính chuỗi lỗi mới, lùi hạn kiểm
// tra (tôn trọng cooldown khi bị rate limit), escalate sang error khi chuỗi
// lỗi chạm ngưỡng. Trả về true khi vòng lặp phải thoát.
func (l *MonitorLoop) handleCycleFailure(ctx context.Context, task *monitormodels.MonitorTask, result CycleResult, runErr error, log *logrus.Entry) bool {
	failures := task.ConsecutiveFailures + 1
	// Chu kỳ lấy được một phần dữ liệu trước khi lỗi: nguồn còn sống,
	// chuỗi lỗi bắt đầu lại từ lần này thay vì cộng dồn
	if task.ResetOnPartialSuccess && result.VideosSeen > 0 {
		failures = 1
	}

	lastError := runErr.Error()
	nowMs := l.now().UnixMilli()
	nextCheckAt := nowMs + int64(task.CheckInterval)*1000

	if errors.Is(runErr, common.ErrRateLimited) {
		// Nguồn yêu cầu chờ: không quay lại trước khi hết cooldown
		if cooldown := common.RateLimitCooldown(runErr); cooldown > 0 {
			if cooledAt := nowMs + cooldown.Milliseconds(); cooledAt > nextCheckAt {
				nextCheckAt = cooledAt
			}
		}
	}

	log.WithFields(logrus.Fields{
		"cycleId":  result.CycleID,
		"failures": failures,
		"error":    lastError,
	}).Warn("🔍 [MONITOR] Chu kỳ thu thập lỗi")

	// Mất session cần người vận hành đăng nhập lại: báo ngay ở lỗi đầu tiên
	// của chuỗi thay vì chờ escalate
	if failures == 1 && errors.Is(runErr, common.ErrLoginRequired) && l.alerter != nil {
		l.alerter.NotifyLoginRequired(ctx, task.AccountID)
	}

	if failures >= l.failureThreshold {
		markErr := l.store.MarkError(ctx, l.TaskID, lastError)
		if markErr != nil {
			log.WithField("error", markErr).Error("🔍 [MONITOR] Không chuyển được task sang trạng thái error")
		}
		log.WithField("failures", failures).Error("🔍 [MONITOR] Vượt ngưỡng lỗi liên tiếp, task chuyển sang error")
		if l.alerter != nil {
			l.alerter.NotifyTaskError(ctx, task, fmt.Sprintf("%d lỗi liên tiếp, lỗi cuối: %s", failures, lastError))
		}
		return true
	}

	if err := l.store.RecordCycleFailure(ctx, l.TaskID, failures, lastError, nextCheckAt); err != nil {
		log.WithField("error", err).Error("🔍 [MONITOR] Không ghi được trạng thái lỗi chu kỳ")
	}
	return false
}
