// Package common - Test phân loại lỗi: các sentinel database phải phân biệt
// được qua errors.Is, và lỗi rate limit mang được gợi ý cool-down.
package common

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestErrorIs_SentinelDatabasePhanBietNhau(t *testing.T) {
	if errors.Is(ErrMongoWrite, ErrMongoDuplicate) {
		t.Error("lỗi ghi dữ liệu không được nhận nhầm là duplicate-key")
	}
	if errors.Is(ErrMongoQuery, ErrNotFound) {
		t.Error("lỗi truy vấn không được nhận nhầm là not-found")
	}
	if errors.Is(ErrMongoQuery, ErrMongoWrite) {
		t.Error("lỗi truy vấn và lỗi ghi phải phân biệt được")
	}
	if errors.Is(ErrNotFound, ErrDuplicate) {
		t.Error("not-found và duplicate phải phân biệt được")
	}
}

func TestErrorIs_HoDuplicateVanKhopNhau(t *testing.T) {
	// ErrDuplicate và ErrMongoDuplicate cùng nghĩa duplicate-key,
	// dùng chung một mã là chủ ý
	if !errors.Is(ErrMongoDuplicate, ErrDuplicate) {
		t.Error("duplicate-key từ Mongo phải khớp sentinel ErrDuplicate")
	}
}

func TestConvertMongoError_DuplicateKeyThanhErrMongoDuplicate(t *testing.T) {
	dupErr := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
	converted := ConvertMongoError(dupErr)
	if !errors.Is(converted, ErrMongoDuplicate) {
		t.Fatalf("duplicate-key error phải chuyển thành ErrMongoDuplicate, nhận được %v", converted)
	}
	if errors.Is(converted, ErrMongoWrite) {
		t.Error("duplicate-key không được đồng thời khớp lỗi ghi thường")
	}
}

func TestConvertMongoError_NoDocumentsThanhNotFound(t *testing.T) {
	if !errors.Is(ConvertMongoError(mongo.ErrNoDocuments), ErrNotFound) {
		t.Error("ErrNoDocuments phải chuyển thành ErrNotFound")
	}
}

func TestNewRateLimited_KhopSentinelVaMangCooldown(t *testing.T) {
	err := NewRateLimited(90 * time.Second)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatal("lỗi từ NewRateLimited phải khớp sentinel ErrRateLimited")
	}
	if got := RateLimitCooldown(err); got != 90*time.Second {
		t.Errorf("cool-down phải là 90s, nhận được %s", got)
	}
	if got := RateLimitCooldown(ErrScraping); got != 0 {
		t.Errorf("lỗi không phải rate limit phải trả cool-down 0, nhận được %s", got)
	}
}
