package monitorsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "douyin_monitor/internal/api/base/service"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/global"
)

// MonitorStatService là cấu trúc chứa các phương thức liên quan đến thống kê theo ngày
type MonitorStatService struct {
	*basesvc.BaseServiceMongoImpl[monitormodels.MonitorDailyStat]
}

// NewMonitorStatService tạo mới MonitorStatService
func NewMonitorStatService() (*MonitorStatService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MonitorStats)
	if !exist {
		return nil, fmt.Errorf("failed to get monitor_stats_daily collection: %v", common.ErrNotFound)
	}
	return &MonitorStatService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[monitormodels.MonitorDailyStat](coll),
	}, nil
}

// UpsertDailyStat ghi thống kê của một task cho một ngày (upsert theo taskId+date).
// Chạy lại với cùng đầu vào cho cùng kết quả — worker có thể tính lại một ngày
// bất kỳ lúc nào mà không tạo bản ghi trùng.
func (s *MonitorStatService) UpsertDailyStat(ctx context.Context, taskID primitive.ObjectID, date string, newVideos, newComments int64, categoryCounts map[string]int64) (monitormodels.MonitorDailyStat, error) {
	filter := bson.M{"monitorTaskId": taskID, "date": date}
	return s.Upsert(ctx, filter, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"newVideos":      newVideos,
			"newComments":    newComments,
			"categoryCounts": categoryCounts,
		},
		SetOnInsert: map[string]interface{}{
			"monitorTaskId": taskID,
			"date":          date,
		},
	})
}

// FindRange trả về thống kê của một task trong khoảng ngày [fromDate, toDate]
// (chuỗi YYYY-MM-DD, so sánh từ điển trùng với so sánh thời gian).
func (s *MonitorStatService) FindRange(ctx context.Context, taskID primitive.ObjectID, fromDate, toDate string) ([]monitormodels.MonitorDailyStat, error) {
	filter := bson.M{"monitorTaskId": taskID}
	dateCond := bson.M{}
	if fromDate != "" {
		dateCond["$gte"] = fromDate
	}
	if toDate != "" {
		dateCond["$lte"] = toDate
	}
	if len(dateCond) > 0 {
		filter["date"] = dateCond
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return s.Find(ctx, filter, opts)
}

// DeleteByTaskID xóa toàn bộ thống kê thuộc một task (cascade khi xóa task)
func (s *MonitorStatService) DeleteByTaskID(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"monitorTaskId": taskID})
}
