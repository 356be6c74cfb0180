package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "douyin_monitor/internal/api/base/handler"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/common"
)

// MonitorStatHandler xử lý các route thống kê theo ngày (read-only,
// dữ liệu do worker thống kê ghi).
type MonitorStatHandler struct {
	*basehdl.BaseHandler[monitormodels.MonitorDailyStat, interface{}, interface{}]
	StatService *monitorsvc.MonitorStatService
}

// NewMonitorStatHandler tạo mới MonitorStatHandler.
func NewMonitorStatHandler() (*MonitorStatHandler, error) {
	service, err := monitorsvc.GetStatService()
	if err != nil {
		return nil, fmt.Errorf("failed to get stat service: %v", err)
	}
	hdl := &MonitorStatHandler{StatService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[monitormodels.MonitorDailyStat, interface{}, interface{}](service)
	return hdl, nil
}

// HandleFindDailyRange trả về thống kê theo ngày của một task trong khoảng
// [from, to] (query string, định dạng YYYY-MM-DD, bỏ trống = không chặn).
func (h *MonitorStatHandler) HandleFindDailyRange(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		taskIDHex := c.Params("taskId")
		if !primitive.IsValidObjectID(taskIDHex) {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				"ID task không hợp lệ",
				common.StatusBadRequest, nil))
			return nil
		}
		taskID, err := primitive.ObjectIDFromHex(taskIDHex)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.StatService.FindRange(c.Context(), taskID, c.Query("from"), c.Query("to"))
		h.HandleResponse(c, data, err)
		return nil
	})
}
