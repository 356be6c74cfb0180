package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DyAccount là tài khoản Douyin được giám sát.
// Luồng đăng nhập và lưu trữ credential nằm ngoài hệ thống này — subsystem
// xác thực bên ngoài ghi trạng thái session vào đây, pipeline chỉ đọc để
// kiểm tra trước mỗi chu kỳ (IsAuthenticated).
type DyAccount struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AccountID        string             `json:"accountId" bson:"accountId" index:"unique;text"` // ID tài khoản phía nguồn
	Nickname         string             `json:"nickname" bson:"nickname"`
	IsLoggedIn       bool               `json:"isLoggedIn" bson:"isLoggedIn"`             // Session hiện tại còn hiệu lực không
	SessionExpiresAt int64              `json:"sessionExpiresAt" bson:"sessionExpiresAt"` // Thời điểm session hết hạn (UnixMilli, 0 = không rõ)
	LastLoginAt      int64              `json:"lastLoginAt" bson:"lastLoginAt"`           // Lần đăng nhập gần nhất (UnixMilli)

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
