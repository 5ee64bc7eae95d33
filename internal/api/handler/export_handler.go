package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/akselna/utveksle.no-sub001/internal/service"
	"github.com/akselna/utveksle.no-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCourses 导出课程库
// GET /api/v1/admin/courses/export?approved_only=true
func (h *ExportHandler) ExportCourses(c *gin.Context) {
	approvedOnly := c.DefaultQuery("approved_only", "true") != "false"

	buf, filename, err := h.exportSvc.ExportCourses(c.Request.Context(), approvedOnly)
	if err != nil {
		response.InternalError(c)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
