package handlers

import (
	"context"
	"errors"

	"skincare-routine/internal/core/catalog"
	"skincare-routine/internal/core/routine"
	"skincare-routine/internal/core/routine/store"
	"skincare-routine/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID，缺少時補上新的
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := uuid.New().String()
	c.Header("X-Request-ID", id)
	return id
}

// ToCustomError 將服務層錯誤對應到 API 錯誤
func ToCustomError(err error) *common.CustomError {
	var custom *common.CustomError
	switch {
	case errors.As(err, &custom):
		return custom
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.Wrap(err)
	case errors.Is(err, catalog.ErrNotFound):
		return common.ErrCatalogNotFound.Wrap(err)
	case errors.Is(err, catalog.ErrInvalidData):
		return common.ErrCatalogInvalidData.Wrap(err)
	case errors.Is(err, catalog.ErrNotLoaded):
		return common.ErrCatalogNotLoaded.Wrap(err)
	case errors.Is(err, store.ErrNotFound):
		return common.ErrRoutineNotFound.Wrap(err)
	case errors.Is(err, routine.ErrUnknownProduct):
		return common.ErrProductNotFound.Wrap(err)
	case errors.Is(err, routine.ErrUnknownStep):
		return common.ErrStepNotFound.Wrap(err)
	case errors.Is(err, routine.ErrInvalidStepType):
		return common.ErrInvalidStepType.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	default:
		return common.ErrInternalError.Wrap(err)
	}
}

// RespondError 寫入錯誤響應，debug 模式附上原始錯誤
func RespondError(c *gin.Context, err error) {
	custom := ToCustomError(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", custom.Code),
		zap.String("request_id", RequestID(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if custom.Status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(custom.Status, custom.ToResponse(gin.Mode() == gin.DebugMode))
}

// RespondInvalidRequest 請求格式錯誤
func RespondInvalidRequest(c *gin.Context, err error) {
	RespondError(c, common.ErrInvalidRequest.Wrap(err))
}
