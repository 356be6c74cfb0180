package monitorsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"douyin_monitor/config"
	basesvc "douyin_monitor/internal/api/base/service"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/global"
	"douyin_monitor/internal/registry"
)

// MonitorTaskService quản lý vòng đời task giám sát: tạo, start/stop,
// xóa cascade và thống kê. Mỗi task đang chạy có đúng một MonitorLoop
// trong registry (key = hex ObjectID) — RegisterIfAbsent bảo đảm
// at-most-one kể cả khi hai request start đua nhau.
type MonitorTaskService struct {
	*basesvc.BaseServiceMongoImpl[monitormodels.MonitorTask]

	runner  CycleRunner
	alerter Alerter

	accounts AccountFinder
	videos   *DyVideoService
	comments *DyCommentService
	stats    *MonitorStatService

	loops *registry.Registry[*MonitorLoop]

	failureThreshold int64
	maxSleepSlice    time.Duration

	loopCtx    context.Context
	loopCancel context.CancelFunc
}

// TaskStatistics là ảnh chụp trạng thái vận hành của một task.
type TaskStatistics struct {
	TaskID              string `json:"taskId"`
	TaskName            string `json:"taskName"`
	Status              string `json:"status"`
	IsRunning           bool   `json:"isRunning"` // Có loop đang chạy trong process này không
	ConsecutiveFailures int64  `json:"consecutiveFailures"`
	LastError           string `json:"lastError,omitempty"`
	LastCheckAt         int64  `json:"lastCheckAt"`
	NextCheckAt         int64  `json:"nextCheckAt"`
	TotalVideosChecked  int64  `json:"totalVideosChecked"`
	TotalCommentsFound  int64  `json:"totalCommentsFound"`
	TotalRepliesSent    int64  `json:"totalRepliesSent"`
	VideoCount          int64  `json:"videoCount"`   // Số video hiện có trong DB
	CommentCount        int64  `json:"commentCount"` // Số bình luận hiện có trong DB
}

// AccountFinder kiểm tra tài khoản nguồn đã được khai báo chưa.
// Task chỉ được tạo khi tài khoản nó tham chiếu đã tồn tại.
type AccountFinder interface {
	ExistsByAccountID(ctx context.Context, accountID string) (bool, error)
}

// NewMonitorTaskService tạo mới MonitorTaskService.
func NewMonitorTaskService(cfg *config.Configuration, runner CycleRunner, alerter Alerter, accounts AccountFinder, videos *DyVideoService, comments *DyCommentService, stats *MonitorStatService) (*MonitorTaskService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MonitorTasks)
	if !exist {
		return nil, fmt.Errorf("failed to get monitor_tasks collection: %v", common.ErrNotFound)
	}

	loopCtx, loopCancel := context.WithCancel(context.Background())
	return &MonitorTaskService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[monitormodels.MonitorTask](coll),
		runner:               runner,
		alerter:              alerter,
		accounts:             accounts,
		videos:               videos,
		comments:             comments,
		stats:                stats,
		loops:                registry.NewRegistry[*MonitorLoop](),
		failureThreshold:     int64(cfg.Monitor_FailureThreshold),
		maxSleepSlice:        time.Duration(cfg.Monitor_MaxSleepSlice) * time.Second,
		loopCtx:              loopCtx,
		loopCancel:           loopCancel,
	}, nil
}

// validateTaskBounds kiểm tra cấu hình lịch nằm trong giới hạn cho phép.
// Giá trị 0 nghĩa là chưa đặt, sẽ nhận default khi insert.
func validateTaskBounds(checkInterval, maxVideos int) error {
	if checkInterval != 0 && (checkInterval < monitormodels.MinCheckInterval || checkInterval > monitormodels.MaxCheckInterval) {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("checkInterval phải trong khoảng [%d, %d] giây", monitormodels.MinCheckInterval, monitormodels.MaxCheckInterval),
			common.StatusBadRequest, nil)
	}
	if maxVideos != 0 && (maxVideos < monitormodels.MinVideosPerCheck || maxVideos > monitormodels.MaxVideosPerCheck) {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("maxVideosPerCheck phải trong khoảng [%d, %d]", monitormodels.MinVideosPerCheck, monitormodels.MaxVideosPerCheck),
			common.StatusBadRequest, nil)
	}
	return nil
}

// firstCheckDue tính hạn kiểm tra đầu tiên: tròn một chu kỳ sau thời điểm
// kích hoạt. Interval chưa đặt dùng giá trị mặc định.
func firstCheckDue(now time.Time, checkInterval int) int64 {
	if checkInterval <= 0 {
		checkInterval = monitormodels.DefaultCheckInterval
	}
	return now.UnixMilli() + int64(checkInterval)*1000
}

// Create tạo task mới ở trạng thái active, hạn kiểm tra đầu tiên là một chu
// kỳ sau khi tạo. Task tạo xong chưa có loop — gọi Start để bắt đầu giám sát.
func (s *MonitorTaskService) Create(ctx context.Context, task monitormodels.MonitorTask) (monitormodels.MonitorTask, error) {
	if err := validateTaskBounds(task.CheckInterval, task.MaxVideosPerCheck); err != nil {
		return task, err
	}

	exists, err := s.accounts.ExistsByAccountID(ctx, task.AccountID)
	if err != nil {
		return task, err
	}
	if !exists {
		return task, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("tài khoản %s chưa được khai báo trong hệ thống", task.AccountID),
			common.StatusBadRequest, nil)
	}

	task.Status = monitormodels.TaskStatusActive
	task.ConsecutiveFailures = 0
	task.NextCheckAt = firstCheckDue(time.Now(), task.CheckInterval)

	return s.InsertOne(ctx, task)
}

// UpdateConfig cập nhật cấu hình task. Loop đang chạy đọc lại task mỗi lát
// ngủ nên thay đổi có hiệu lực trong vòng một lát mà không cần restart.
func (s *MonitorTaskService) UpdateConfig(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (monitormodels.MonitorTask, error) {
	if v, ok := set["checkInterval"]; ok {
		if interval, ok := toInt(v); ok {
			if err := validateTaskBounds(interval, 0); err != nil {
				return monitormodels.MonitorTask{}, err
			}
		}
	}
	if v, ok := set["maxVideosPerCheck"]; ok {
		if maxVideos, ok := toInt(v); ok {
			if err := validateTaskBounds(0, maxVideos); err != nil {
				return monitormodels.MonitorTask{}, err
			}
		}
	}
	return s.UpdateById(ctx, id, &basesvc.UpdateData{Set: set})
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Start chuyển task sang active, reset chuỗi lỗi và khởi động loop giám sát.
// Task đang có loop chạy trả về ErrTaskAlreadyRunning.
func (s *MonitorTaskService) Start(ctx context.Context, id primitive.ObjectID) (monitormodels.MonitorTask, error) {
	task, err := s.Reload(ctx, id)
	if err != nil {
		return task, err
	}

	if _, running := s.loops.Get(id.Hex()); running {
		return task, common.ErrTaskAlreadyRunning
	}

	task, err = s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":              monitormodels.TaskStatusActive,
			"consecutiveFailures": int64(0),
			"lastError":           "",
			"nextCheckAt":         firstCheckDue(time.Now(), task.CheckInterval),
		},
	})
	if err != nil {
		return task, err
	}

	if err := s.launchLoop(id); err != nil {
		return task, err
	}

	logrus.WithFields(logrus.Fields{
		"taskId":   id.Hex(),
		"taskName": task.TaskName,
	}).Info("🔍 [MONITOR] Đã start task giám sát")
	return task, nil
}

// launchLoop đăng ký và chạy loop cho task; registry bảo đảm mỗi task chỉ
// có một loop trong process.
func (s *MonitorTaskService) launchLoop(id primitive.ObjectID) error {
	loop := NewMonitorLoop(id, s, s.runner, s.alerter, s.failureThreshold, s.maxSleepSlice)
	registered, err := s.loops.RegisterIfAbsent(id.Hex(), loop)
	if err != nil {
		return err
	}
	if !registered {
		return common.ErrTaskAlreadyRunning
	}

	loop.Start(s.loopCtx, func() {
		// Loop tự thoát (status đổi, task xóa, escalate error) thì gỡ khỏi
		// registry; cleanup nil vì goroutine đã kết thúc
		_, _ = s.loops.Clear(id.Hex(), nil)
	})
	return nil
}

// Stop dừng loop (nếu đang chạy) và chuyển task sang stopped. Idempotent:
// stop task đã dừng chỉ cập nhật trạng thái.
func (s *MonitorTaskService) Stop(ctx context.Context, id primitive.ObjectID) (monitormodels.MonitorTask, error) {
	if _, err := s.Reload(ctx, id); err != nil {
		return monitormodels.MonitorTask{}, err
	}

	s.stopLoop(id)

	task, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{"status": monitormodels.TaskStatusStopped},
	})
	if err != nil {
		return task, err
	}

	logrus.WithField("taskId", id.Hex()).Info("🔍 [MONITOR] Đã stop task giám sát")
	return task, nil
}

// stopLoop gỡ handle khỏi registry rồi mới hủy và chờ loop thoát.
// Không làm việc blocking dưới lock của registry: onExit của loop cũng gọi
// Clear trên cùng registry, chờ loop thoát trong lúc giữ lock sẽ tự khóa nhau.
func (s *MonitorTaskService) stopLoop(id primitive.ObjectID) {
	loop, exists := s.loops.Get(id.Hex())
	if !exists {
		return
	}
	_, _ = s.loops.Clear(id.Hex(), nil)
	loop.Stop()
}

// IsRunning cho biết task có loop đang chạy trong process này không.
func (s *MonitorTaskService) IsRunning(id primitive.ObjectID) bool {
	_, running := s.loops.Get(id.Hex())
	return running
}

// Delete dừng loop rồi xóa task cùng toàn bộ dữ liệu con (video, bình luận,
// thống kê).
func (s *MonitorTaskService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Reload(ctx, id); err != nil {
		return err
	}

	s.stopLoop(id)

	if _, err := s.comments.DeleteByTaskID(ctx, id); err != nil {
		return err
	}
	if _, err := s.videos.DeleteByTaskID(ctx, id); err != nil {
		return err
	}
	if _, err := s.stats.DeleteByTaskID(ctx, id); err != nil {
		return err
	}
	if err := s.DeleteById(ctx, id); err != nil {
		return err
	}

	logrus.WithField("taskId", id.Hex()).Info("🔍 [MONITOR] Đã xóa task và dữ liệu liên quan")
	return nil
}

// GetStatistics trả về ảnh chụp trạng thái vận hành của task kèm số bản ghi
// thực tế trong DB.
func (s *MonitorTaskService) GetStatistics(ctx context.Context, id primitive.ObjectID) (TaskStatistics, error) {
	task, err := s.Reload(ctx, id)
	if err != nil {
		return TaskStatistics{}, err
	}

	videoCount, err := s.videos.CountByTaskID(ctx, id)
	if err != nil {
		return TaskStatistics{}, err
	}
	commentCount, err := s.comments.CountByTaskID(ctx, id)
	if err != nil {
		return TaskStatistics{}, err
	}

	return TaskStatistics{
		TaskID:              task.ID.Hex(),
		TaskName:            task.TaskName,
		Status:              task.Status,
		IsRunning:           s.IsRunning(id),
		ConsecutiveFailures: task.ConsecutiveFailures,
		LastError:           task.LastError,
		LastCheckAt:         task.LastCheckAt,
		NextCheckAt:         task.NextCheckAt,
		TotalVideosChecked:  task.TotalVideosChecked,
		TotalCommentsFound:  task.TotalCommentsFound,
		TotalRepliesSent:    task.TotalRepliesSent,
		VideoCount:          videoCount,
		CommentCount:        commentCount,
	}, nil
}

// IncrementRepliesSent cộng dồn bộ đếm trả lời đã gửi của task.
func (s *MonitorTaskService) IncrementRepliesSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Inc: map[string]interface{}{"totalRepliesSent": int64(1)},
	})
	return err
}

// ResumeActiveTasks khởi động lại loop cho mọi task đang active trong DB —
// gọi khi service khởi động để tiếp tục giám sát sau restart. Trả về số
// loop đã khởi động.
func (s *MonitorTaskService) ResumeActiveTasks(ctx context.Context) (int, error) {
	tasks, err := s.Find(ctx, bson.M{"status": monitormodels.TaskStatusActive}, nil)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for _, task := range tasks {
		if err := s.launchLoop(task.ID); err != nil {
			if errors.Is(err, common.ErrTaskAlreadyRunning) {
				continue
			}
			return resumed, err
		}
		resumed++
	}

	if resumed > 0 {
		logrus.WithField("count", resumed).Info("🔄 [RESUME] Đã khôi phục loop cho các task active")
	}
	return resumed, nil
}

// Shutdown dừng toàn bộ loop đang chạy và chờ chúng thoát (graceful shutdown).
func (s *MonitorTaskService) Shutdown() {
	s.loopCancel()
	_, _ = s.loops.ClearAll(func(loop *MonitorLoop) error {
		<-loop.Done()
		return nil
	})
}

// ---- TaskStore (persistence cho MonitorLoop) ----

// Reload đọc lại task theo id; không tìm thấy trả về ErrTaskNotFound.
func (s *MonitorTaskService) Reload(ctx context.Context, id primitive.ObjectID) (monitormodels.MonitorTask, error) {
	var task monitormodels.MonitorTask
	err := s.Collection().FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return task, common.ErrTaskNotFound
		}
		return task, common.ConvertMongoError(err)
	}
	return task, nil
}

// RecordCycleSuccess ghi chu kỳ thành công: reset chuỗi lỗi, cập nhật mốc
// kiểm tra, cộng dồn bộ đếm tổng.
func (s *MonitorTaskService) RecordCycleSuccess(ctx context.Context, id primitive.ObjectID, result CycleResult, checkedAt, nextCheckAt int64) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"lastCheckAt":         checkedAt,
			"nextCheckAt":         nextCheckAt,
			"consecutiveFailures": int64(0),
			"lastError":           "",
		},
		Inc: map[string]interface{}{
			"totalVideosChecked": int64(result.VideosSeen),
			"totalCommentsFound": int64(result.CommentsNew),
		},
	})
	return err
}

// RecordCycleFailure ghi chu kỳ lỗi, lùi hạn kiểm tra tiếp theo.
func (s *MonitorTaskService) RecordCycleFailure(ctx context.Context, id primitive.ObjectID, failures int64, lastError string, nextCheckAt int64) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"consecutiveFailures": failures,
			"lastError":           lastError,
			"lastCheckAt":         time.Now().UnixMilli(),
			"nextCheckAt":         nextCheckAt,
		},
	})
	return err
}

// MarkError chuyển task sang trạng thái error (cần can thiệp thủ công rồi
// Start lại).
func (s *MonitorTaskService) MarkError(ctx context.Context, id primitive.ObjectID, lastError string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":    monitormodels.TaskStatusError,
			"lastError": lastError,
		},
	})
	return err
}
