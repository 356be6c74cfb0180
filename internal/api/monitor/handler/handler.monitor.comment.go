package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "douyin_monitor/internal/api/base/handler"
	monitordto "douyin_monitor/internal/api/monitor/dto"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	monitorsvc "douyin_monitor/internal/api/monitor/service"
	"douyin_monitor/internal/common"
)

// DyCommentHandler xử lý các route bình luận đã thu thập. Bình luận do
// pipeline ghi nên API chỉ đọc, cộng thêm hai thao tác đánh dấu xử lý.
type DyCommentHandler struct {
	*basehdl.BaseHandler[monitormodels.DyComment, monitordto.CommentMarkRepliedInput, monitordto.CommentMarkRepliedInput]
	CommentService *monitorsvc.DyCommentService
	TaskService    *monitorsvc.MonitorTaskService
}

// NewDyCommentHandler tạo mới DyCommentHandler.
func NewDyCommentHandler() (*DyCommentHandler, error) {
	commentService, err := monitorsvc.GetCommentService()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment service: %v", err)
	}
	taskService, err := monitorsvc.GetTaskService()
	if err != nil {
		return nil, fmt.Errorf("failed to get task service: %v", err)
	}
	hdl := &DyCommentHandler{CommentService: commentService, TaskService: taskService}
	hdl.BaseHandler = basehdl.NewBaseHandler[monitormodels.DyComment, monitordto.CommentMarkRepliedInput, monitordto.CommentMarkRepliedInput](commentService)
	return hdl, nil
}

func (h *DyCommentHandler) parseCommentID(c fiber.Ctx) (primitive.ObjectID, error) {
	id := h.GetIDFromContext(c)
	if !primitive.IsValidObjectID(id) {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID bình luận không hợp lệ",
			common.StatusBadRequest, nil)
	}
	return primitive.ObjectIDFromHex(id)
}

// HandleMarkReplied ghi nhận đã gửi trả lời cho bình luận và cộng bộ đếm
// trả lời của task sở hữu.
func (h *DyCommentHandler) HandleMarkReplied(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseCommentID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input monitordto.CommentMarkRepliedInput
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

		comment, err := h.CommentService.MarkReplied(c.Context(), id, input.ReplyContent)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		// Bộ đếm tổng của task là best-effort, lệch được tính lại từ dữ liệu
		if err := h.TaskService.IncrementRepliesSent(c.Context(), comment.MonitorTaskID); err != nil {
			logrus.WithFields(logrus.Fields{
				"commentId": id.Hex(),
				"taskId":    comment.MonitorTaskID.Hex(),
				"error":     err,
			}).Warn("🔍 [MONITOR] Không cộng được bộ đếm trả lời của task")
		}

		h.HandleResponse(c, comment, nil)
		return nil
	})
}

// HandleMarkProcessed đánh dấu bình luận đã được xử lý.
func (h *DyCommentHandler) HandleMarkProcessed(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseCommentID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		data, err := h.CommentService.MarkProcessed(c.Context(), id)
		h.HandleResponse(c, data, err)
		return nil
	})
}
