package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa toàn bộ cấu hình tĩnh cần thiết để chạy hệ thống giám sát.
// Các giá trị được đọc từ file env theo môi trường (config/env/<GO_ENV>.env)
// và được parse một lần duy nhất lúc khởi động.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`            // Địa chỉ server
	ApiKey                string `env:"API_KEY"`                               // API key cho các route quản trị (rỗng = tắt kiểm tra)
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`       // URL kết nối MongoDB
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`               // Tên database
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`           // Các origins được phép (phân cách bởi dấu phẩy)
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`       // Số request tối đa trong window (0 = disable)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`     // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`  // Bật/tắt rate limiting

	// Cấu hình scheduler giám sát
	Monitor_FailureThreshold int  `env:"MONITOR_FAILURE_THRESHOLD" envDefault:"5"` // Số chu kỳ lỗi liên tiếp trước khi chuyển task sang error
	Monitor_MaxSleepSlice    int  `env:"MONITOR_MAX_SLEEP_SLICE" envDefault:"60"`  // Lát ngủ tối đa của vòng lặp (giây) — quyết định độ trễ hủy
	Monitor_FetchDelay       int  `env:"MONITOR_FETCH_DELAY" envDefault:"6"`       // Khoảng nghỉ giữa 2 lần lấy bình luận của 2 video (giây)
	Monitor_ResumeOnStartup  bool `env:"MONITOR_RESUME_ON_STARTUP" envDefault:"true"` // Tự khởi động lại các task active khi server start

	// Cấu hình adapter nguồn nội dung (Douyin)
	Source_RequestTimeout int    `env:"SOURCE_REQUEST_TIMEOUT" envDefault:"30"` // Timeout mỗi request tới nguồn (giây)
	Source_BaseURL        string `env:"SOURCE_BASE_URL" envDefault:"https://www.douyin.com"`
	Source_UserAgent      string `env:"SOURCE_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64)"`

	// Cấu hình kênh cảnh báo khi task chuyển sang error (optional)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"` // Bot token Telegram (optional)
	TelegramChatIDs  string `env:"TELEGRAM_CHAT_IDS"`  // Danh sách chat IDs phân cách bằng dấu phẩy (optional)
	SMTP_Host        string `env:"SMTP_HOST"`          // SMTP host cho cảnh báo email (optional)
	SMTP_Port        int    `env:"SMTP_PORT" envDefault:"587"`
	SMTP_User        string `env:"SMTP_USER"`
	SMTP_Password    string `env:"SMTP_PASSWORD"`
	Alert_EmailTo    string `env:"ALERT_EMAIL_TO"` // Danh sách email nhận cảnh báo, phân cách bằng dấu phẩy (optional)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ thư mục hiện tại
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc dữ liệu cấu hình từ file env theo môi trường
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			// Không fatal: cho phép chạy thuần bằng environment variables (container)
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
