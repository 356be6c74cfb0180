package global

import (
	"douyin_monitor/config"
	"douyin_monitor/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_Monitor_CollectionName chứa tên các collection trong MongoDB
type MongoDB_Monitor_CollectionName struct {
	MonitorTasks    string // Tên collection cho task giám sát
	MonitorVideos   string // Tên collection cho video đã phát hiện
	MonitorComments string // Tên collection cho bình luận đã thu thập
	MonitorAccounts string // Tên collection cho tài khoản nguồn
	MonitorStats    string // Tên collection cho thống kê theo ngày
}

// Các biến toàn cục
var Validate *validator.Validate                                                           // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                                          // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                                             // Cấu hình của server
var MongoDB_ColNames MongoDB_Monitor_CollectionName = *new(MongoDB_Monitor_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
