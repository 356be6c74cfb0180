package global

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// videoURLRegex nhận dạng URL video Douyin dạng đầy đủ hoặc dạng share
var videoURLRegex = regexp.MustCompile(`^https?://(www\.)?(douyin\.com/video/\d+|v\.douyin\.com/[A-Za-z0-9]+/?)`)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	// Khởi tạo validator
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("exists", validateExists)
	_ = Validate.RegisterValidation("video_url", validateVideoURL)
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"document.write",
		"innerHTML",
		"fromCharCode",
		"window.location",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateVideoURL kiểm tra định dạng URL video Douyin.
// Chấp nhận cả URL đầy đủ (douyin.com/video/<id>) và URL share (v.douyin.com/xxx).
func validateVideoURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Empty = optional, dùng kèm omitempty
	}
	return videoURLRegex.MatchString(value)
}

// validateExists kiểm tra giá trị tồn tại trong collection (foreign key validation)
// Format: validate:"exists=<collection_name>" (so khớp _id, giá trị phải là ObjectID)
// hoặc:   validate:"exists=<collection_name>.<field>" (so khớp field chỉ định, giá trị string)
// Ví dụ: validate:"exists=monitor_tasks", validate:"exists=monitor_accounts.accountId"
func validateExists(fl validator.FieldLevel) bool {
	value := fl.Field()

	// Lấy collection name (và field, nếu có) từ param
	collectionName := fl.Param()
	if collectionName == "" {
		return false
	}
	fieldName := "_id"
	if dot := strings.Index(collectionName, "."); dot >= 0 {
		fieldName = collectionName[dot+1:]
		collectionName = collectionName[:dot]
	}

	// Xác định giá trị so khớp
	var matchValue interface{}
	switch v := value.Interface().(type) {
	case string:
		if v == "" {
			return true // Empty string = optional, skip validation (nếu có omitempty)
		}
		if fieldName == "_id" {
			objID, err := primitive.ObjectIDFromHex(v)
			if err != nil {
				return false
			}
			matchValue = objID
		} else {
			matchValue = v
		}
	case primitive.ObjectID:
		if v == primitive.NilObjectID {
			return true // Nil ObjectID = optional, skip validation
		}
		matchValue = v
	case *primitive.ObjectID:
		if v == nil {
			return true // Nil pointer = optional, skip validation
		}
		matchValue = *v
	default:
		// Kiểu không hỗ trợ → không validate
		return false
	}

	// Lấy collection từ registry
	collection, exist := RegistryCollections.Get(collectionName)
	if !exist {
		// Collection không tồn tại trong registry → không thể validate
		return false
	}

	// Query database để check tồn tại
	ctx := context.Background()
	count, err := collection.CountDocuments(ctx, bson.M{fieldName: matchValue})
	if err != nil {
		return false
	}

	return count > 0
}
