// Package handler chứa các handler HTTP cho domain giám sát.
package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "douyin_monitor/internal/api/base/handler"
	monitordto "douyin_monitor/internal/api/monitor/dto"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/common"
)

// MonitorTaskHandler xử lý các route của task giám sát. Tạo/start/stop/xóa
// đi qua các handler riêng vì chúng đụng vào vòng đời loop; phần đọc dùng
// CRUD chung.
type MonitorTaskHandler struct {
	*basehdl.BaseHandler[monitormodels.MonitorTask, monitordto.MonitorTaskCreateInput, monitordto.MonitorTaskUpdateInput]
	TaskService *monitorsvc.MonitorTaskService
}

// NewMonitorTaskHandler tạo mới MonitorTaskHandler.
func NewMonitorTaskHandler() (*MonitorTaskHandler, error) {
	service, err := monitorsvc.GetTaskService()
	if err != nil {
		return nil, fmt.Errorf("failed to get task service: %v", err)
	}
	hdl := &MonitorTaskHandler{TaskService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[monitormodels.MonitorTask, monitordto.MonitorTaskCreateInput, monitordto.MonitorTaskUpdateInput](service)
	return hdl, nil
}

// parseTaskID đọc và kiểm tra :id của route.
func (h *MonitorTaskHandler) parseTaskID(c fiber.Ctx) (primitive.ObjectID, error) {
	id := h.GetIDFromContext(c)
	if !primitive.IsValidObjectID(id) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID task không hợp lệ",
			common.StatusBadRequest, nil)
	}
	return primitive.ObjectIDFromHex(id)
}

// HandleCreate tạo task giám sát mới ở trạng thái active.
func (h *MonitorTaskHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input monitordto.MonitorTaskCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				common.MsgValidationError,
				common.StatusBadRequest, nil))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		task, err := h.TransformCreateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.TaskService.Create(c.Context(), *task)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// HandleUpdate cập nhật cấu hình task (partial update, kiểm tra giới hạn lịch).
func (h *MonitorTaskHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseTaskID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input monitordto.MonitorTaskUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				common.MsgValidationError,
				common.StatusBadRequest, nil))
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		model, err := h.TransformUpdateInputToModel(&input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		set, err := basehdl.BuildPartialSet(model)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		data, err := h.TaskService.UpdateConfig(c.Context(), id, set)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// HandleStart khởi động giám sát cho task.
func (h *MonitorTaskHandler) HandleStart(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseTaskID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		data, err := h.TaskService.Start(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// HandleStop dừng giám sát task (idempotent).
func (h *MonitorTaskHandler) HandleStop(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseTaskID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		data, err := h.TaskService.Stop(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}

// HandleDelete xóa task cùng toàn bộ video, bình luận và thống kê của nó.
func (h *MonitorTaskHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseTaskID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		err = h.TaskService.Delete(c.Context(), id)
		h.HandleResponse(c, fiber.Map{"deleted": err == nil}, err)
		return nil
	})
}

// HandleStatistics trả về ảnh chụp trạng thái vận hành của task.
func (h *MonitorTaskHandler) HandleStatistics(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseTaskID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		data, err := h.TaskService.GetStatistics(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}
