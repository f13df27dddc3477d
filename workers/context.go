package workers

import "github.com/gin-gonic/gin"

const graderKey = "grader"
const poolKey = "grading_pool"

// SetGraderToContext injects the grader and its pool into every request.
func SetGraderToContext(g *Grader, p *Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(graderKey, g)
		c.Set(poolKey, p)
		c.Next()
	}
}

func GraderInstance(c *gin.Context) (*Grader, *Pool) {
	var (
		g *Grader
		p *Pool
	)
	if v, ok := c.Get(graderKey); ok {
		g, _ = v.(*Grader)
	}
	if v, ok := c.Get(poolKey); ok {
		p, _ = v.(*Pool)
	}
	return g, p
}
