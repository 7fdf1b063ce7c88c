package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 取出原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Wrap 以相同代碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// ToResponse 轉成 API 錯誤響應
func (e *CustomError) ToResponse(debug bool) ErrorResponse {
	resp := ErrorResponse{Code: e.Code, Message: e.Message}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError  = "INTERNAL_ERROR"  // 500
	ErrCodeGatewayTimeout = "GATEWAY_TIMEOUT" // 504

	// 業務錯誤
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeRoutineNotFound    = "ROUTINE_NOT_FOUND"
	ErrCodeStepNotFound       = "STEP_NOT_FOUND"
	ErrCodeInvalidStepType    = "INVALID_STEP_TYPE"
	ErrCodeCatalogNotFound    = "CATALOG_NOT_FOUND"
	ErrCodeCatalogInvalidData = "CATALOG_INVALID_DATA"
	ErrCodeCatalogNotLoaded   = "CATALOG_NOT_LOADED"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError  = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrProductNotFound    = NewError(ErrCodeProductNotFound, "產品不存在", http.StatusNotFound, nil)
	ErrRoutineNotFound    = NewError(ErrCodeRoutineNotFound, "保養流程不存在", http.StatusNotFound, nil)
	ErrStepNotFound       = NewError(ErrCodeStepNotFound, "步驟不存在", http.StatusNotFound, nil)
	ErrInvalidStepType    = NewError(ErrCodeInvalidStepType, "無效的步驟類型", http.StatusBadRequest, nil)
	ErrCatalogNotFound    = NewError(ErrCodeCatalogNotFound, "找不到產品目錄", http.StatusServiceUnavailable, nil)
	ErrCatalogInvalidData = NewError(ErrCodeCatalogInvalidData, "產品目錄格式錯誤", http.StatusServiceUnavailable, nil)
	ErrCatalogNotLoaded   = NewError(ErrCodeCatalogNotLoaded, "產品目錄尚未載入", http.StatusServiceUnavailable, nil)
)
