package routine

import (
	"net/http"

	"skincare-routine/internal/api/handlers"
	routineService "skincare-routine/internal/core/routine"
	"skincare-routine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 產生保養流程的請求
type GenerateRequest struct {
	Profile     common.SkinProfile `json:"profile"`
	Preferences common.Preferences `json:"preferences"`
}

// OverrideRequest 手動替換產品
type OverrideRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// Handler 保養流程處理程序
type Handler struct {
	routineService *routineService.Service
}

// NewHandler 創建新的保養流程處理程序
func NewHandler(routineService *routineService.Service) *Handler {
	return &Handler{
		routineService: routineService,
	}
}

// HandleGenerate 無狀態產生，不儲存
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondInvalidRequest(c, err)
		return
	}

	routine, err := h.routineService.Generate(c.Request.Context(), req.Profile, req.Preferences)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogDebug("保養流程產生成功",
		zap.String("request_id", requestID),
		zap.Int("am_steps", len(routine.AM)),
		zap.Int("pm_steps", len(routine.PM)),
	)

	c.JSON(http.StatusOK, routine)
}

// HandleGenerateForUser 產生並儲存為使用者目前的流程
func (h *Handler) HandleGenerateForUser(c *gin.Context) {
	requestID := handlers.RequestID(c)
	userID := c.Param("user_id")

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondInvalidRequest(c, err)
		return
	}

	routine, err := h.routineService.GenerateForUser(c.Request.Context(), userID, req.Profile, req.Preferences)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("使用者保養流程已產生",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("routine_id", routine.ID),
	)

	c.JSON(http.StatusCreated, routine)
}

// HandleGet 使用者目前的流程
func (h *Handler) HandleGet(c *gin.Context) {
	routine, err := h.routineService.Current(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// HandleApplyOverride 替換某步驟的產品
func (h *Handler) HandleApplyOverride(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.RespondInvalidRequest(c, err)
		return
	}

	routine, err := h.routineService.ApplyOverride(c.Request.Context(),
		c.Param("user_id"),
		common.StepType(c.Param("step_type")),
		req.ProductID,
	)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// HandleRemoveOverride 移除替換
func (h *Handler) HandleRemoveOverride(c *gin.Context) {
	routine, err := h.routineService.RemoveOverride(c.Request.Context(),
		c.Param("user_id"),
		common.StepType(c.Param("step_type")),
	)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// HandleDelete 刪除使用者目前的流程
func (h *Handler) HandleDelete(c *gin.Context) {
	if err := h.routineService.Delete(c.Request.Context(), c.Param("user_id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleCompleteStep 標記步驟完成
func (h *Handler) HandleCompleteStep(c *gin.Context) {
	h.setStepCompleted(c, true)
}

// HandleUncompleteStep 取消步驟完成
func (h *Handler) HandleUncompleteStep(c *gin.Context) {
	h.setStepCompleted(c, false)
}

func (h *Handler) setStepCompleted(c *gin.Context, completed bool) {
	routine, err := h.routineService.SetStepCompleted(c.Request.Context(),
		c.Param("user_id"),
		c.Param("step_id"),
		completed,
	)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// HandleToggleStep 切換步驟完成狀態
func (h *Handler) HandleToggleStep(c *gin.Context) {
	routine, err := h.routineService.ToggleStepCompletion(c.Request.Context(),
		c.Param("user_id"),
		c.Param("step_id"),
	)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}
