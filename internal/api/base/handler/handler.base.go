package basehdl

// Package basehdl - base handler core.
// Package này chứa BaseHandler generic và các tiện ích parse/validate/transform
// dùng chung cho tất cả domain handler.

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	basesvc "douyin_monitor/internal/api/base/service"
	"douyin_monitor/internal/common"
	"douyin_monitor/internal/global"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// BaseHandler chứa service cơ bản và các tiện ích xử lý request/response.
// Type Parameters:
//   - T: Model của domain
//   - CreateInput: DTO đầu vào khi tạo mới
//   - UpdateInput: DTO đầu vào khi cập nhật
type BaseHandler[T any, CreateInput any, UpdateInput any] struct {
	BaseService basesvc.BaseServiceMongo[T]
}

// NewBaseHandler tạo mới một BaseHandler với service được cung cấp
func NewBaseHandler[T any, CreateInput any, UpdateInput any](service basesvc.BaseServiceMongo[T]) *BaseHandler[T, CreateInput, UpdateInput] {
	return &BaseHandler[T, CreateInput, UpdateInput]{
		BaseService: service,
	}
}

// ParseRequestBody parse request body JSON vào struct đích
func (h *BaseHandler[T, CreateInput, UpdateInput]) ParseRequestBody(c fiber.Ctx, out interface{}) error {
	return c.Bind().Body(out)
}

// ValidateInput validate input với struct tag (validate, oneof, etc.)
// Trả về lỗi chuẩn hóa common.Error với chi tiết field bị lỗi.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ValidateInput(input interface{}) error {
	if global.Validate == nil {
		return nil
	}
	err := global.Validate.Struct(input)
	if err == nil {
		return nil
	}

	// Gom các lỗi field thành chi tiết dễ đọc
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		details := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			details = append(details, fmt.Sprintf("field '%s' không thỏa điều kiện '%s'", fe.Field(), fe.Tag()))
		}
		return common.NewError(
			common.ErrCodeValidationInput,
			common.MsgValidationError,
			common.StatusBadRequest,
			details,
		)
	}
	return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
}

// TransformCreateInputToModel chuyển đổi CreateInput DTO sang Model theo struct tag `transform`
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformCreateInputToModel(input *CreateInput) (*T, error) {
	var model T
	if err := transformInputToModel(input, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// TransformUpdateInputToModel chuyển đổi UpdateInput DTO sang Model theo struct tag `transform`
func (h *BaseHandler[T, CreateInput, UpdateInput]) TransformUpdateInputToModel(input *UpdateInput) (*T, error) {
	var model T
	if err := transformInputToModel(input, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// transformInputToModel copy các field trùng tên từ DTO sang model.
// Struct tag `transform` trên DTO điều khiển chuyển đổi kiểu:
//   - str_objectid:     string hex → primitive.ObjectID
//   - str_objectid_ptr: string hex → *primitive.ObjectID
//   - optional:         giá trị rỗng được bỏ qua thay vì báo lỗi
func transformInputToModel(input interface{}, model interface{}) error {
	inVal := reflect.ValueOf(input)
	if inVal.Kind() == reflect.Ptr {
		inVal = inVal.Elem()
	}
	outVal := reflect.ValueOf(model)
	if outVal.Kind() != reflect.Ptr {
		return fmt.Errorf("model phải là con trỏ")
	}
	outVal = outVal.Elem()
	if inVal.Kind() != reflect.Struct || outVal.Kind() != reflect.Struct {
		return fmt.Errorf("input và model phải là struct")
	}

	inType := inVal.Type()
	for i := 0; i < inType.NumField(); i++ {
		inField := inType.Field(i)
		outField := outVal.FieldByName(inField.Name)
		if !outField.IsValid() || !outField.CanSet() {
			continue
		}

		srcVal := inVal.Field(i)
		transformTag := inField.Tag.Get("transform")
		directives := strings.Split(transformTag, ",")
		optional := false
		kind := ""
		for _, d := range directives {
			switch {
			case d == "optional":
				optional = true
			case d != "" && !strings.HasPrefix(d, "default="):
				kind = d
			}
		}

		switch kind {
		case "str_objectid":
			s := srcVal.String()
			if s == "" {
				if optional {
					continue
				}
				return fmt.Errorf("field '%s' không được để trống", inField.Name)
			}
			objID, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				return fmt.Errorf("field '%s' không đúng định dạng ObjectID: %w", inField.Name, err)
			}
			outField.Set(reflect.ValueOf(objID))
		case "str_objectid_ptr":
			s := srcVal.String()
			if s == "" {
				continue
			}
			objID, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				return fmt.Errorf("field '%s' không đúng định dạng ObjectID: %w", inField.Name, err)
			}
			outField.Set(reflect.ValueOf(&objID))
		default:
			// DTO dùng con trỏ cho field optional: nil nghĩa là không gửi,
			// bỏ qua để model giữ giá trị zero (hoặc default tag khi insert)
			if srcVal.Kind() == reflect.Ptr && srcVal.Type() != outField.Type() {
				if srcVal.IsNil() {
					continue
				}
				srcVal = srcVal.Elem()
			}
			if srcVal.Type().AssignableTo(outField.Type()) {
				outField.Set(srcVal)
			} else if srcVal.Type().ConvertibleTo(outField.Type()) {
				outField.Set(srcVal.Convert(outField.Type()))
			}
		}
	}
	return nil
}

// GetIDFromContext lấy tham số :id từ URI params
func (h *BaseHandler[T, CreateInput, UpdateInput]) GetIDFromContext(c fiber.Ctx) string {
	return c.Params("id")
}

// ProcessFilter parse filter từ query string và normalize các giá trị ObjectID.
// Filter được truyền dưới dạng JSON, ví dụ: {"status": "running"}.
// Các field _id hoặc kết thúc bằng Id có giá trị hex 24 ký tự được convert sang ObjectID.
func (h *BaseHandler[T, CreateInput, UpdateInput]) ProcessFilter(c fiber.Ctx) (map[string]interface{}, error) {
	filterStr := c.Query("filter", "{}")

	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(filterStr), &filter); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Filter phải là JSON hợp lệ. Giá trị nhận được: %s", filterStr),
			common.StatusBadRequest,
			err,
		)
	}

	normalizeObjectIDValues(filter)
	return filter, nil
}

// normalizeObjectIDValues convert các giá trị hex 24 ký tự của field id sang ObjectID (đệ quy)
func normalizeObjectIDValues(m map[string]interface{}) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if isObjectIDKey(k) && primitive.IsValidObjectID(val) {
				if objID, err := primitive.ObjectIDFromHex(val); err == nil {
					m[k] = objID
				}
			}
		case map[string]interface{}:
			normalizeObjectIDValues(val)
		}
	}
}

// isObjectIDKey nhận biết key chứa ObjectID (_id hoặc kết thúc bằng Id)
func isObjectIDKey(key string) bool {
	return key == "_id" || strings.HasSuffix(key, "Id")
}

// mongoOptionsInput cấu trúc options truyền qua query string
// Ví dụ: {"projection": {"field": 1}, "sort": {"field": -1}, "limit": 10, "skip": 0}
type mongoOptionsInput struct {
	Projection map[string]interface{} `json:"projection,omitempty"`
	Sort       map[string]interface{} `json:"sort,omitempty"`
	Limit      *int64                 `json:"limit,omitempty"`
	Skip       *int64                 `json:"skip,omitempty"`
}

// processMongoOptions parse options từ query string thành FindOneOptions hoặc FindOptions
func (h *BaseHandler[T, CreateInput, UpdateInput]) processMongoOptions(c fiber.Ctx, findOne bool) (interface{}, error) {
	optionsStr := c.Query("options", "{}")

	var input mongoOptionsInput
	if err := json.Unmarshal([]byte(optionsStr), &input); err != nil {
		return nil, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Options phải là JSON hợp lệ. Giá trị nhận được: %s", optionsStr),
			common.StatusBadRequest,
			err,
		)
	}

	if findOne {
		opts := mongoopts.FindOne()
		if input.Projection != nil {
			opts.SetProjection(input.Projection)
		}
		if input.Sort != nil {
			opts.SetSort(input.Sort)
		}
		if input.Skip != nil {
			opts.SetSkip(*input.Skip)
		}
		return opts, nil
	}

	opts := mongoopts.Find()
	if input.Projection != nil {
		opts.SetProjection(input.Projection)
	}
	if input.Sort != nil {
		opts.SetSort(input.Sort)
	}
	if input.Limit != nil {
		opts.SetLimit(*input.Limit)
	}
	if input.Skip != nil {
		opts.SetSkip(*input.Skip)
	}
	return opts, nil
}
