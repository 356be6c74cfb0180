package accountdto

// DyAccountUpsertInput là dữ liệu subsystem xác thực bên ngoài ghi trạng thái
// session của một tài khoản nguồn.
type DyAccountUpsertInput struct {
	AccountID        string `json:"accountId" validate:"required"` // ID tài khoản phía nguồn
	Nickname         string `json:"nickname" validate:"omitempty,max=200"`
	IsLoggedIn       bool   `json:"isLoggedIn"`
	SessionExpiresAt int64  `json:"sessionExpiresAt" validate:"omitempty,gte=0"`
	LastLoginAt      int64  `json:"lastLoginAt" validate:"omitempty,gte=0"`
}
