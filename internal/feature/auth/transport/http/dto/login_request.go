package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
// 必須フィールドとメール形式のバリデーションを含みます。
type LoginReq struct {
	Email    string `json:"email" binding:"required,trimmedemail"`
	Password string `json:"password" binding:"required"`
}
