package handler

import (
	"strconv"

	"goldops-core/internal/handler/response"
	"goldops-core/pkg/errno"
	"goldops-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

// tenantID 从 X-Tenant-ID 头取租户身份。
// 鉴权是外部协作方的事，这里只认网关注入的头。
func tenantID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.GetHeader("X-Tenant-ID"), 10, 64)
	if err != nil || id == 0 {
		return 0, errno.ErrTenantHeader
	}
	return id, nil
}

// bindError 把参数校验错误翻译成带具体字段信息的响应
func bindError(c *gin.Context, err error) {
	response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
}

// pathID 解析路径参数里的数字 ID
func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errno.ErrBind
	}
	return id, nil
}
