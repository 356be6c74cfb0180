package common

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized    = 401 // Chưa xác thực
	StatusForbidden       = 403 // Không có quyền truy cập
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusBadGateway          = 502 // Gateway không hợp lệ
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
	StatusGatewayTimeout      = 504 // Gateway timeout
)

// Response Messages
const (
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	MsgBadRequest      = "Yêu cầu không hợp lệ"
	MsgUnauthorized    = "Vui lòng xác thực"
	MsgNotFound        = "Không tìm thấy tài nguyên"
	MsgConflict        = "Xung đột dữ liệu"
	MsgInternalError   = "Lỗi hệ thống"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgDatabaseError   = "Lỗi tương tác với cơ sở dữ liệu"
	MsgInvalidFormat   = "Định dạng dữ liệu không hợp lệ"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: SRC_001)
	Category    string // Phân loại lỗi (ví dụ: Source)
	SubCategory string // Phân loại con (ví dụ: RateLimit)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthToken = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Token",
		Description: "Lỗi liên quan đến API key",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "Lỗi xác thực dữ liệu chung",
	}

	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	// Mỗi sentinel database một mã riêng: errors.Is so theo mã lỗi, nên
	// not-found / duplicate / write không được dùng chung mã với query —
	// nếu dùng chung, lỗi ghi dữ liệu sẽ bị nhận nhầm là duplicate-key skip.
	ErrCodeDatabaseNotFound = ErrorCode{
		Code:        "DB_003",
		Category:    "Database",
		SubCategory: "NotFound",
		Description: "Không tìm thấy dữ liệu",
	}

	ErrCodeDatabaseDuplicate = ErrorCode{
		Code:        "DB_004",
		Category:    "Database",
		SubCategory: "Duplicate",
		Description: "Dữ liệu trùng khóa unique",
	}

	ErrCodeDatabaseWrite = ErrorCode{
		Code:        "DB_005",
		Category:    "Database",
		SubCategory: "Write",
		Description: "Lỗi ghi dữ liệu",
	}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusinessState = ErrorCode{
		Code:        "BIZ_001",
		Category:    "Business",
		SubCategory: "State",
		Description: "Lỗi trạng thái nghiệp vụ",
	}

	ErrCodeTaskNotFound = ErrorCode{
		Code:        "BIZ_101",
		Category:    "Business",
		SubCategory: "MonitorTask",
		Description: "Task giám sát không tồn tại",
	}

	ErrCodeTaskAlreadyRunning = ErrorCode{
		Code:        "BIZ_102",
		Category:    "Business",
		SubCategory: "MonitorTask",
		Description: "Task giám sát đã có vòng lặp đang chạy",
	}

	// Source Adapter Errors (SRC_xxx) — lỗi từ nguồn nội dung bên ngoài
	ErrCodeSourceLogin = ErrorCode{
		Code:        "SRC_001",
		Category:    "Source",
		SubCategory: "Login",
		Description: "Tài khoản cần đăng nhập lại",
	}

	ErrCodeSourceScraping = ErrorCode{
		Code:        "SRC_002",
		Category:    "Source",
		SubCategory: "Scraping",
		Description: "Lỗi tạm thời khi thu thập dữ liệu từ nguồn",
	}

	ErrCodeSourceRateLimit = ErrorCode{
		Code:        "SRC_003",
		Category:    "Source",
		SubCategory: "RateLimit",
		Description: "Nguồn giới hạn tần suất truy cập",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is).
// Hai *Error được coi là cùng một lỗi khi trùng mã lỗi — Details và Message
// chi tiết có thể khác nhau giữa các lần phát sinh.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Authentication Errors
	ErrApiKeyInvalid = NewError(ErrCodeAuthToken, "API key không hợp lệ", StatusUnauthorized, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)
	ErrConfigInvalid = NewError(ErrCodeValidationInput, "Cấu hình task không hợp lệ", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseNotFound, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseDuplicate, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Business Logic Errors
	ErrInvalidState       = NewError(ErrCodeBusinessState, "Trạng thái không hợp lệ", StatusBadRequest, nil)
	ErrTaskNotFound       = NewError(ErrCodeTaskNotFound, "Task giám sát không tồn tại", StatusNotFound, nil)
	ErrTaskAlreadyRunning = NewError(ErrCodeTaskAlreadyRunning, "Task giám sát đã đang chạy", StatusConflict, nil)

	// Source Adapter Errors
	ErrLoginRequired = NewError(ErrCodeSourceLogin, "Tài khoản cần đăng nhập lại", StatusUnauthorized, nil)
	ErrScraping      = NewError(ErrCodeSourceScraping, "Lỗi thu thập dữ liệu từ nguồn", StatusBadGateway, nil)
	ErrRateLimited   = NewError(ErrCodeSourceRateLimit, "Nguồn giới hạn tần suất truy cập", StatusTooManyRequests, nil)
)

// MongoDB Specific Errors
var (
	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối MongoDB", StatusServiceUnavailable, nil)
	ErrMongoAuth       = NewError(ErrCodeDatabaseConnection, "Lỗi xác thực MongoDB", StatusUnauthorized, nil)
	ErrMongoQuery      = NewError(ErrCodeDatabaseQuery, "Lỗi truy vấn MongoDB", StatusInternalServerError, nil)
	ErrMongoWrite      = NewError(ErrCodeDatabaseWrite, "Lỗi ghi dữ liệu MongoDB", StatusInternalServerError, nil)
	ErrMongoDuplicate  = NewError(ErrCodeDatabaseDuplicate, "Dữ liệu trùng lặp trong MongoDB", StatusConflict, nil)
	ErrMongoSystem     = NewError(ErrCodeDatabase, "Lỗi hệ thống MongoDB", StatusInternalServerError, nil)
)

// NewRateLimited tạo lỗi RateLimited kèm gợi ý cool-down từ nguồn.
// Details giữ số giây cần chờ để scheduler cộng thêm vào next-due.
func NewRateLimited(cooldown time.Duration) error {
	return NewError(
		ErrCodeSourceRateLimit,
		"Nguồn giới hạn tần suất truy cập",
		StatusTooManyRequests,
		int64(cooldown/time.Second),
	)
}

// RateLimitCooldown trích xuất gợi ý cool-down (giây) từ một lỗi RateLimited.
// Trả về 0 nếu err không phải RateLimited hoặc không mang gợi ý.
func RateLimitCooldown(err error) time.Duration {
	var customErr *Error
	if !errors.As(err, &customErr) {
		return 0
	}
	if customErr.Code.Code != ErrCodeSourceRateLimit.Code {
		return 0
	}
	if seconds, ok := customErr.Details.(int64); ok && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert các lỗi đã được chuẩn hóa
	if errors.Is(err, ErrNotFound) {
		return err
	}

	// Duplicate key: đây là lưới an toàn cuối cùng cho idempotent ingestion
	if mongo.IsDuplicateKeyError(err) {
		return ErrMongoDuplicate
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// Kiểm tra các loại lỗi MongoDB cụ thể theo dải mã lỗi command
	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		switch {
		case mongoErr.Code >= 100 && mongoErr.Code < 200:
			return ErrMongoConnection
		case mongoErr.Code >= 200 && mongoErr.Code < 300:
			return ErrMongoAuth
		case mongoErr.Code >= 300 && mongoErr.Code < 400:
			return ErrMongoQuery
		case mongoErr.Code >= 400 && mongoErr.Code < 500:
			return ErrMongoWrite
		default:
			return ErrMongoSystem
		}
	}

	// Timeout mạng coi như lỗi kết nối
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return ErrMongoConnection
	}

	return NewError(ErrCodeDatabase, err.Error(), StatusInternalServerError, err)
}
