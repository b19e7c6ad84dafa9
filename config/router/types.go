package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is what every handler returns. Body is rendered as JSON unless
// File is set, in which case the file is sent as a download.
type ServiceResult struct {
	StatusCode int
	Body       any
	File       *FileResult
}

type FileResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() any {
	if result.Body == nil {
		return gin.H{}
	}
	return result.Body
}
