package db

import (
	"github.com/gin-gonic/gin"
)

const activityKey = "activity"

// SetActivityToContext makes the dashboard queries available to handlers.
func SetActivityToContext(activity *Activity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(activityKey, activity)
		c.Next()
	}
}

func ActivityInstance(c *gin.Context) *Activity {
	v, ok := c.Get(activityKey)
	if !ok {
		return nil
	}
	a, _ := v.(*Activity)
	return a
}
