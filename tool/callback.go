package tool

import (
	"github.com/gin-gonic/gin"
)

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

// FastReturnErrno is the batch-level failure body of POST /compress.
func FastReturnErrno(errno int) gin.H {
	return gin.H{
		"error": errno,
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}
