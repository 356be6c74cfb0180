package accounthdl

import (
	"fmt"

	accountdto "douyin_monitor/internal/api/account/dto"
	accountmodels "douyin_monitor/internal/api/account/models"
	accountsvc "douyin_monitor/internal/api/account/service"
	basehdl "douyin_monitor/internal/api/base/handler"

	"github.com/gofiber/fiber/v3"
)

// DyAccountHandler xử lý các yêu cầu liên quan đến tài khoản nguồn
type DyAccountHandler struct {
	*basehdl.BaseHandler[accountmodels.DyAccount, accountdto.DyAccountUpsertInput, accountdto.DyAccountUpsertInput]
	AccountService *accountsvc.DyAccountService
}

// NewDyAccountHandler khởi tạo DyAccountHandler mới
func NewDyAccountHandler() (*DyAccountHandler, error) {
	service, err := accountsvc.NewDyAccountService()
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %v", err)
	}
	hdl := &DyAccountHandler{AccountService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[accountmodels.DyAccount, accountdto.DyAccountUpsertInput, accountdto.DyAccountUpsertInput](service)
	return hdl, nil
}

// HandleFindOneByAccountID tìm một tài khoản theo AccountID phía nguồn
func (h *DyAccountHandler) HandleFindOneByAccountID(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		accountID := c.Params("accountId")
		data, err := h.AccountService.FindOneByAccountID(c.Context(), accountID)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// HandleUpsertSession ghi trạng thái session của một tài khoản (từ subsystem xác thực)
func (h *DyAccountHandler) HandleUpsertSession(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input accountdto.DyAccountUpsertInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.AccountService.UpsertSessionState(c.Context(), accountmodels.DyAccount{
			AccountID:        input.AccountID,
			Nickname:         input.Nickname,
			IsLoggedIn:       input.IsLoggedIn,
			SessionExpiresAt: input.SessionExpiresAt,
			LastLoginAt:      input.LastLoginAt,
		})
		h.HandleResponse(c, data, err)
		return nil
	})
}
