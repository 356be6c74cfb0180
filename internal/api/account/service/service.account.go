package accountsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	accountmodels "douyin_monitor/internal/api/account/models"
	basesvc "douyin_monitor/internal/api/base/service"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/global"
)

// DyAccountService là cấu trúc chứa các phương thức liên quan đến tài khoản nguồn
type DyAccountService struct {
	*basesvc.BaseServiceMongoImpl[accountmodels.DyAccount]
}

// NewDyAccountService tạo mới DyAccountService
func NewDyAccountService() (*DyAccountService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.MonitorAccounts)
	if !exist {
		return nil, fmt.Errorf("failed to get monitor_accounts collection: %v", common.ErrNotFound)
	}
	return &DyAccountService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[accountmodels.DyAccount](coll),
	}, nil
}

// FindOneByAccountID tìm một tài khoản theo AccountID phía nguồn
func (s *DyAccountService) FindOneByAccountID(ctx context.Context, accountID string) (accountmodels.DyAccount, error) {
	filter := bson.M{"accountId": accountID}
	var account accountmodels.DyAccount
	err := s.Collection().FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return account, common.ErrNotFound
		}
		return account, common.ConvertMongoError(err)
	}
	return account, nil
}

// ExistsByAccountID kiểm tra tài khoản đã được khai báo trong hệ thống chưa.
func (s *DyAccountService) ExistsByAccountID(ctx context.Context, accountID string) (bool, error) {
	count, err := s.Collection().CountDocuments(ctx, bson.M{"accountId": accountID})
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return count > 0, nil
}

// IsAuthenticated kiểm tra tài khoản còn session hợp lệ không.
// Đây là pre-check của pipeline trước mỗi chu kỳ thu thập: tài khoản không
// tồn tại, đã đánh dấu logout, hoặc session đã hết hạn đều coi là chưa xác thực.
func (s *DyAccountService) IsAuthenticated(ctx context.Context, accountID string) (bool, error) {
	account, err := s.FindOneByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !account.IsLoggedIn {
		return false, nil
	}
	if account.SessionExpiresAt > 0 && account.SessionExpiresAt <= time.Now().UnixMilli() {
		return false, nil
	}
	return true, nil
}

// UpsertSessionState ghi trạng thái session của một tài khoản (upsert theo accountId).
// Được gọi từ subsystem xác thực bên ngoài qua API.
func (s *DyAccountService) UpsertSessionState(ctx context.Context, account accountmodels.DyAccount) (accountmodels.DyAccount, error) {
	set := map[string]interface{}{
		"isLoggedIn":       account.IsLoggedIn,
		"sessionExpiresAt": account.SessionExpiresAt,
	}
	if account.Nickname != "" {
		set["nickname"] = account.Nickname
	}
	if account.LastLoginAt > 0 {
		set["lastLoginAt"] = account.LastLoginAt
	}
	return s.Upsert(ctx, bson.M{"accountId": account.AccountID}, &basesvc.UpdateData{
		Set:         set,
		SetOnInsert: map[string]interface{}{"accountId": account.AccountID},
	})
}
