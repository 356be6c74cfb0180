package monitorsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "douyin_monitor/internal/api/base/service"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/global"
	"douyin_monitor/internal/source"
)

// DyVideoService là cấu trúc chứa các phương thức liên quan đến video đã phát hiện
type DyVideoService struct {
	*basesvc.BaseServiceMongoImpl[monitormodels.DyVideo]
}

// NewDyVideoService tạo mới DyVideoService
func NewDyVideoService() (*DyVideoService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MonitorVideos)
	if !exist {
		return nil, fmt.Errorf("failed to get monitor_videos collection: %v", common.ErrNotFound)
	}
	return &DyVideoService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[monitormodels.DyVideo](coll),
	}, nil
}

// FindOneByVideoID tìm một video theo id phía nguồn
func (s *DyVideoService) FindOneByVideoID(ctx context.Context, videoID string) (monitormodels.DyVideo, error) {
	filter := bson.M{"videoId": videoID}
	var video monitormodels.DyVideo
	err := s.Collection().FindOne(ctx, filter).Decode(&video)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return video, common.ErrNotFound
		}
		return video, common.ConvertMongoError(err)
	}
	return video, nil
}

// RefreshEngagement làm mới chỉ số tương tác của một video đã biết.
func (s *DyVideoService) RefreshEngagement(ctx context.Context, id primitive.ObjectID, v source.Video) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"viewCount":       v.ViewCount,
			"likeCount":       v.LikeCount,
			"commentCount":    v.CommentCount,
			"shareCount":      v.ShareCount,
			"lastMonitoredAt": time.Now().UnixMilli(),
		},
	})
	return err
}

// InsertFromSource tạo bản ghi video mới từ dữ liệu nguồn.
// Trả về (video, true, nil) khi tạo mới; (video đã có, false, nil) khi gặp
// duplicate-key — lưới an toàn cuối của idempotent ingestion, không coi là lỗi.
func (s *DyVideoService) InsertFromSource(ctx context.Context, taskID primitive.ObjectID, v source.Video) (monitormodels.DyVideo, bool, error) {
	video := monitormodels.DyVideo{
		VideoID:         v.ExternalID,
		MonitorTaskID:   taskID,
		URL:             v.URL,
		Title:           v.Title,
		AuthorName:      v.AuthorName,
		ViewCount:       v.ViewCount,
		LikeCount:       v.LikeCount,
		CommentCount:    v.CommentCount,
		ShareCount:      v.ShareCount,
		IsMonitored:     true,
		LastMonitoredAt: time.Now().UnixMilli(),
	}

	created, err := s.InsertOne(ctx, video)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			existing, findErr := s.FindOneByVideoID(ctx, v.ExternalID)
			if findErr != nil {
				return existing, false, findErr
			}
			return existing, false, nil
		}
		return created, false, err
	}
	return created, true, nil
}

// CountByTaskID đếm số video thuộc một task
func (s *DyVideoService) CountByTaskID(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.CountDocuments(ctx, bson.M{"monitorTaskId": taskID})
}

// CountNewInRange đếm video mới phát hiện của task trong khoảng thời gian [from, to)
func (s *DyVideoService) CountNewInRange(ctx context.Context, taskID primitive.ObjectID, from, to int64) (int64, error) {
	return s.CountDocuments(ctx, bson.M{
		"monitorTaskId": taskID,
		"createdAt":     bson.M{"$gte": from, "$lt": to},
	})
}

// DeleteByTaskID xóa toàn bộ video thuộc một task (cascade khi xóa task)
func (s *DyVideoService) DeleteByTaskID(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"monitorTaskId": taskID})
}
