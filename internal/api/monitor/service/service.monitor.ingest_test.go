// Package monitorsvc - Test pipeline thu thập: idempotent theo external id,
// giới hạn số video mỗi chu kỳ, pre-check session và khoảng nghỉ giữa video.
package monitorsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	monitormodels "douyin_monitor/internal/api/monitor/models"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/source"
)

// fakeAdapter trả dữ liệu nguồn cố định.
type fakeAdapter struct {
	videos     []source.Video
	comments   map[string][]source.Comment
	videoErr   error
	commentErr error

	listVideoCalls   int
	listCommentCalls int
}

func (f *fakeAdapter) ListRecentVideos(_ context.Context, _ string, _ int) ([]source.Video, error) {
	f.listVideoCalls++
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.videos, nil
}

func (f *fakeAdapter) ListComments(_ context.Context, videoExternalID string) ([]source.Comment, error) {
	f.listCommentCalls++
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	return f.comments[videoExternalID], nil
}

// memVideoStore là VideoStore in-memory với unique theo external id.
type memVideoStore struct {
	byExternalID map[string]monitormodels.DyVideo
	inserts      int
	refreshes    int
}

func newMemVideoStore() *memVideoStore {
	return &memVideoStore{byExternalID: make(map[string]monitormodels.DyVideo)}
}

func (m *memVideoStore) FindOneByVideoID(_ context.Context, videoID string) (monitormodels.DyVideo, error) {
	if v, ok := m.byExternalID[videoID]; ok {
		return v, nil
	}
	return monitormodels.DyVideo{}, common.ErrNotFound
}

func (m *memVideoStore) InsertFromSource(_ context.Context, taskID primitive.ObjectID, v source.Video) (monitormodels.DyVideo, bool, error) {
	if existing, ok := m.byExternalID[v.ExternalID]; ok {
		return existing, false, nil
	}
	record := monitormodels.DyVideo{
		ID:            primitive.NewObjectID(),
		VideoID:       v.ExternalID,
		MonitorTaskID: taskID,
		Title:         v.Title,
	}
	m.byExternalID[v.ExternalID] = record
	m.inserts++
	return record, true, nil
}

func (m *memVideoStore) RefreshEngagement(_ context.Context, _ primitive.ObjectID, _ source.Video) error {
	m.refreshes++
	return nil
}

// memCommentStore là CommentStore in-memory. raceDuplicates giả lập chu kỳ
// khác chen vào giữa existence-check và insert.
type memCommentStore struct {
	byExternalID   map[string]bool
	inserts        int
	raceDuplicates map[string]bool
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{
		byExternalID:   make(map[string]bool),
		raceDuplicates: make(map[string]bool),
	}
}

func (m *memCommentStore) ExistsByCommentID(_ context.Context, commentID string) (bool, error) {
	if m.raceDuplicates[commentID] {
		// Chu kỳ kia chưa ghi tại thời điểm check
		return false, nil
	}
	return m.byExternalID[commentID], nil
}

func (m *memCommentStore) InsertFromSource(_ context.Context, _ primitive.ObjectID, _ *primitive.ObjectID, c source.Comment, _ FilterResult) (bool, error) {
	if m.raceDuplicates[c.ExternalID] {
		// Unique index chặn: bản ghi đã tồn tại
		return false, nil
	}
	if m.byExternalID[c.ExternalID] {
		return false, nil
	}
	m.byExternalID[c.ExternalID] = true
	m.inserts++
	return true, nil
}

type fakeAccounts struct {
	authenticated bool
	err           error
}

func (f *fakeAccounts) IsAuthenticated(_ context.Context, _ string) (bool, error) {
	return f.authenticated, f.err
}

func ingestTask() *monitormodels.MonitorTask {
	return &monitormodels.MonitorTask{
		ID:                primitive.NewObjectID(),
		TaskName:          "ingest-test",
		AccountID:         "acc-1",
		Status:            monitormodels.TaskStatusActive,
		MonitorVideos:     true,
		MonitorComments:   true,
		MaxVideosPerCheck: 10,
		MaxCommentLength:  500,
	}
}

func newTestIngest(adapter source.Adapter, videos *memVideoStore, comments *memCommentStore, accounts AccountChecker) (*MonitorIngestService, *int) {
	svc := NewMonitorIngestService(adapter, videos, comments, accounts, 6*time.Second)
	sleeps := 0
	svc.sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return svc, &sleeps
}

func TestRunCycle_IdempotentTheoExternalID(t *testing.T) {
	adapter := &fakeAdapter{
		videos: []source.Video{
			{ExternalID: "v1", Title: "video 1"},
			{ExternalID: "v2", Title: "video 2"},
		},
		comments: map[string][]source.Comment{
			"v1": {{ExternalID: "c1", Content: "这种情况怎么处理？", AuthorName: "用户甲"}},
			"v2": {{ExternalID: "c2", Content: "谢谢分享", AuthorName: "用户乙"}},
		},
	}
	videos := newMemVideoStore()
	comments := newMemCommentStore()
	svc, _ := newTestIngest(adapter, videos, comments, &fakeAccounts{authenticated: true})
	task := ingestTask()

	first, err := svc.RunCycle(context.Background(), task)
	if err != nil {
		t.Fatalf("chu kỳ đầu lỗi: %v", err)
	}
	if first.VideosNew != 2 || first.CommentsNew != 2 {
		t.Fatalf("chu kỳ đầu phải ghi 2 video + 2 bình luận mới, nhận được %+v", first)
	}

	second, err := svc.RunCycle(context.Background(), task)
	if err != nil {
		t.Fatalf("chu kỳ hai lỗi: %v", err)
	}
	if second.VideosNew != 0 || second.CommentsNew != 0 {
		t.Errorf("chạy lại trên cùng dữ liệu nguồn không được tạo bản ghi mới, nhận được %+v", second)
	}
	if videos.inserts != 2 || comments.inserts != 2 {
		t.Errorf("số bản ghi không được tăng sau chu kỳ lặp lại: videos=%d comments=%d", videos.inserts, comments.inserts)
	}
	if videos.refreshes != 2 {
		t.Errorf("chu kỳ hai phải làm mới chỉ số 2 video đã biết, nhận được %d", videos.refreshes)
	}
	if second.CommentsSkipped != 2 {
		t.Errorf("bình luận đã có phải được đếm là skip, nhận được %d", second.CommentsSkipped)
	}
}

func TestRunCycle_ChanTheoNganSachVideo(t *testing.T) {
	adapter := &fakeAdapter{videos: []source.Video{
		{ExternalID: "v1"}, {ExternalID: "v2"}, {ExternalID: "v3"},
		{ExternalID: "v4"}, {ExternalID: "v5"},
	}}
	videos := newMemVideoStore()
	comments := newMemCommentStore()
	svc, _ := newTestIngest(adapter, videos, comments, &fakeAccounts{authenticated: true})

	task := ingestTask()
	task.MonitorComments = false
	task.MaxVideosPerCheck = 3

	result, err := svc.RunCycle(context.Background(), task)
	if err != nil {
		t.Fatalf("chu kỳ lỗi: %v", err)
	}
	if result.VideosSeen != 3 {
		t.Errorf("ngân sách 3 video mỗi chu kỳ, nhận được VideosSeen=%d", result.VideosSeen)
	}
	if videos.inserts != 3 {
		t.Errorf("chỉ được ghi 3 video, nhận được %d", videos.inserts)
	}
}

func TestRunCycle_LoginRequiredKhiMatSession(t *testing.T) {
	adapter := &fakeAdapter{videos: []source.Video{{ExternalID: "v1"}}}
	svc, _ := newTestIngest(adapter, newMemVideoStore(), newMemCommentStore(), &fakeAccounts{authenticated: false})

	_, err := svc.RunCycle(context.Background(), ingestTask())
	if !errors.Is(err, common.ErrLoginRequired) {
		t.Fatalf("mất session phải trả về ErrLoginRequired, nhận được %v", err)
	}
	if adapter.listVideoCalls != 0 {
		t.Error("mất session thì không được chạm vào nguồn")
	}
}

func TestRunCycle_BinhLuanSpamBiLoc(t *testing.T) {
	adapter := &fakeAdapter{
		videos: []source.Video{{ExternalID: "v1"}},
		comments: map[string][]source.Comment{
			"v1": {
				{ExternalID: "c1", Content: "加我微信详聊"},
				{ExternalID: "c2", Content: "合同纠纷怎么办？"},
			},
		},
	}
	comments := newMemCommentStore()
	svc, _ := newTestIngest(adapter, newMemVideoStore(), comments, &fakeAccounts{authenticated: true})

	task := ingestTask()
	task.FilterSpam = true

	result, err := svc.RunCycle(context.Background(), task)
	if err != nil {
		t.Fatalf("chu kỳ lỗi: %v", err)
	}
	if result.CommentsNew != 1 || result.CommentsSkipped != 1 {
		t.Errorf("1 bình luận spam phải bị lọc, 1 được thu nhận; nhận được %+v", result)
	}
	if comments.inserts != 1 {
		t.Errorf("chỉ được ghi 1 bình luận, nhận được %d", comments.inserts)
	}
}

func TestRunCycle_DuplicateKhiDuaKhongPhaiLoi(t *testing.T) {
	adapter := &fakeAdapter{
		videos: []source.Video{{ExternalID: "v1"}},
		comments: map[string][]source.Comment{
			"v1": {{ExternalID: "c1", Content: "合同问题请教"}},
		},
	}
	comments := newMemCommentStore()
	comments.raceDuplicates["c1"] = true
	svc, _ := newTestIngest(adapter, newMemVideoStore(), comments, &fakeAccounts{authenticated: true})

	result, err := svc.RunCycle(context.Background(), ingestTask())
	if err != nil {
		t.Fatalf("duplicate-key khi hai chu kỳ đua nhau không được coi là lỗi: %v", err)
	}
	if result.CommentsNew != 0 || result.CommentsSkipped != 1 {
		t.Errorf("bình luận bị unique index chặn phải đếm là skip, nhận được %+v", result)
	}
}

func TestRunCycle_NghiGiuaCacVideo(t *testing.T) {
	adapter := &fakeAdapter{videos: []source.Video{
		{ExternalID: "v1"}, {ExternalID: "v2"}, {ExternalID: "v3"},
	}}
	svc, sleeps := newTestIngest(adapter, newMemVideoStore(), newMemCommentStore(), &fakeAccounts{authenticated: true})

	task := ingestTask()
	task.MonitorComments = false

	if _, err := svc.RunCycle(context.Background(), task); err != nil {
		t.Fatalf("chu kỳ lỗi: %v", err)
	}
	if *sleeps != 2 {
		t.Errorf("3 video phải có 2 khoảng nghỉ xen giữa, nhận được %d", *sleeps)
	}
}

func TestRunCycle_LoiNguonPropagate(t *testing.T) {
	adapter := &fakeAdapter{videoErr: common.NewRateLimited(30 * time.Second)}
	svc, _ := newTestIngest(adapter, newMemVideoStore(), newMemCommentStore(), &fakeAccounts{authenticated: true})

	_, err := svc.RunCycle(context.Background(), ingestTask())
	if !errors.Is(err, common.ErrRateLimited) {
		t.Fatalf("lỗi rate limit từ nguồn phải propagate nguyên phân loại, nhận được %v", err)
	}
}
