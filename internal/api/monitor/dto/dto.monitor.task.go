package monitordto

// MonitorTaskCreateInput dữ liệu đầu vào khi tạo task giám sát.
// Giới hạn cấu hình (checkInterval 60–3600, maxVideosPerCheck 1–50) được
// enforce bằng validate tag — vi phạm trả về lỗi ConfigInvalid.
type MonitorTaskCreateInput struct {
	AccountID   string `json:"accountId" validate:"required,exists=monitor_accounts.accountId"`
	TaskName    string `json:"taskName" validate:"required,min=1,max=200,no_xss"`
	Description string `json:"description" validate:"omitempty,max=1000,no_xss"`

	MonitorVideos   *bool `json:"monitorVideos"`
	MonitorComments *bool `json:"monitorComments"`
	MonitorMessages bool  `json:"monitorMessages"`
	MonitorMentions bool  `json:"monitorMentions"`

	Keywords         []string `json:"keywords" validate:"omitempty,dive,min=1,max=100"`
	ExcludeKeywords  []string `json:"excludeKeywords" validate:"omitempty,dive,min=1,max=100"`
	MinCommentLength int      `json:"minCommentLength" validate:"omitempty,gte=0,lte=1000"`
	MaxCommentLength int      `json:"maxCommentLength" validate:"omitempty,gte=1,lte=5000"`
	FilterSpam       *bool    `json:"filterSpam"`

	CheckInterval     int `json:"checkInterval" validate:"omitempty,gte=60,lte=3600"`
	MaxVideosPerCheck int `json:"maxVideosPerCheck" validate:"omitempty,gte=1,lte=50"`

	ResetOnPartialSuccess bool `json:"resetOnPartialSuccess"`
}

// MonitorTaskUpdateInput dữ liệu đầu vào khi cập nhật cấu hình task.
// Chỉ các field có giá trị được cập nhật; các field runtime do scheduler
// quản lý không cập nhật được qua API.
type MonitorTaskUpdateInput struct {
	TaskName    string `json:"taskName" validate:"omitempty,min=1,max=200,no_xss"`
	Description string `json:"description" validate:"omitempty,max=1000,no_xss"`

	MonitorVideos   *bool `json:"monitorVideos"`
	MonitorComments *bool `json:"monitorComments"`
	MonitorMessages *bool `json:"monitorMessages"`
	MonitorMentions *bool `json:"monitorMentions"`

	Keywords         []string `json:"keywords" validate:"omitempty,dive,min=1,max=100"`
	ExcludeKeywords  []string `json:"excludeKeywords" validate:"omitempty,dive,min=1,max=100"`
	MinCommentLength *int     `json:"minCommentLength" validate:"omitempty,gte=0,lte=1000"`
	MaxCommentLength *int     `json:"maxCommentLength" validate:"omitempty,gte=1,lte=5000"`
	FilterSpam       *bool    `json:"filterSpam"`

	CheckInterval     *int `json:"checkInterval" validate:"omitempty,gte=60,lte=3600"`
	MaxVideosPerCheck *int `json:"maxVideosPerCheck" validate:"omitempty,gte=1,lte=50"`

	ResetOnPartialSuccess *bool `json:"resetOnPartialSuccess"`
}
