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

// DyCommentService là cấu trúc chứa các phương thức liên quan đến bình luận đã thu thập
type DyCommentService struct {
	*basesvc.BaseServiceMongoImpl[monitormodels.DyComment]
}

// NewDyCommentService tạo mới DyCommentService
func NewDyCommentService() (*DyCommentService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MonitorComments)
	if !exist {
		return nil, fmt.Errorf("failed to get monitor_comments collection: %v", common.ErrNotFound)
	}
	return &DyCommentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[monitormodels.DyComment](coll),
	}, nil
}

// ExistsByCommentID kiểm tra bình luận đã có bản ghi theo id phía nguồn chưa
func (s *DyCommentService) ExistsByCommentID(ctx context.Context, commentID string) (bool, error) {
	return s.DocumentExists(ctx, bson.M{"commentId": commentID})
}

// InsertFromSource tạo bản ghi bình luận mới từ dữ liệu nguồn kèm kết quả phân loại.
// Trả về (true, nil) khi tạo mới; (false, nil) khi gặp duplicate-key — hai chu kỳ
// chồng lấn cùng thấy một bình luận thì bản ghi sau bị unique index chặn, coi là skip.
func (s *DyCommentService) InsertFromSource(ctx context.Context, taskID primitive.ObjectID, videoID *primitive.ObjectID, c source.Comment, result FilterResult) (bool, error) {
	comment := monitormodels.DyComment{
		CommentID:       c.ExternalID,
		MonitorTaskID:   taskID,
		VideoID:         videoID,
		Content:         c.Content,
		AuthorName:      c.AuthorName,
		LikeCount:       c.LikeCount,
		Category:        result.Category,
		KeywordsMatched: result.MatchedKeywords,
		IsSpam:          result.IsSpam,
		CommentAt:       time.Now().UnixMilli(),
	}

	_, err := s.InsertOne(ctx, comment)
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkReplied ghi nhận hệ thống trả lời đã gửi trả lời cho bình luận.
func (s *DyCommentService) MarkReplied(ctx context.Context, id primitive.ObjectID, replyContent string) (monitormodels.DyComment, error) {
	return s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"isReplied":    true,
			"isProcessed":  true,
			"replyContent": replyContent,
			"repliedAt":    time.Now().UnixMilli(),
		},
	})
}

// MarkProcessed đánh dấu bình luận đã được xử lý (không nhất thiết đã trả lời).
func (s *DyCommentService) MarkProcessed(ctx context.Context, id primitive.ObjectID) (monitormodels.DyComment, error) {
	return s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{"isProcessed": true},
	})
}

// CountByTaskID đếm số bình luận thuộc một task
func (s *DyCommentService) CountByTaskID(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.CountDocuments(ctx, bson.M{"monitorTaskId": taskID})
}

// CountNewInRange đếm bình luận mới thu thập của task trong khoảng [from, to)
func (s *DyCommentService) CountNewInRange(ctx context.Context, taskID primitive.ObjectID, from, to int64) (int64, error) {
	return s.CountDocuments(ctx, bson.M{
		"monitorTaskId": taskID,
		"createdAt":     bson.M{"$gte": from, "$lt": to},
	})
}

// CategoryCountsInRange gom số bình luận mới theo category trong khoảng [from, to)
// bằng aggregation pipeline (dùng cho worker thống kê theo ngày).
func (s *DyCommentService) CategoryCountsInRange(ctx context.Context, taskID primitive.ObjectID, from, to int64) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"monitorTaskId": taskID,
			"createdAt":     bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Category string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, common.ConvertMongoError(err)
		}
		if row.Category != "" {
			counts[row.Category] = row.Count
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return counts, nil
}

// DeleteByTaskID xóa toàn bộ bình luận thuộc một task (cascade khi xóa task)
func (s *DyCommentService) DeleteByTaskID(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"monitorTaskId": taskID})
}
