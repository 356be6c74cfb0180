package handler

import (
	"fmt"

	basehdl "douyin_monitor/internal/api/base/handler"
	monitormodels "douyin_monitor/internal/api/monitor/models"
	monitorsvc "douyin_monitor/internal/api/monitor/service"
)

// DyVideoHandler xử lý các route video đã phát hiện (read-only, dữ liệu do
// pipeline ghi).
type DyVideoHandler struct {
	*basehdl.BaseHandler[monitormodels.DyVideo, interface{}, interface{}]
	VideoService *monitorsvc.DyVideoService
}

// NewDyVideoHandler tạo mới DyVideoHandler.
func NewDyVideoHandler() (*DyVideoHandler, error) {
	service, err := monitorsvc.GetVideoService()
	if err != nil {
		return nil, fmt.Errorf("failed to get video service: %v", err)
	}
	hdl := &DyVideoHandler{VideoService: service}
	hdl.BaseHandler = basehdl.NewBaseHandler[monitormodels.DyVideo, interface{}, interface{}](service)
	return hdl, nil
}
