package security

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	allowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With"
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// OriginsFunc 每次请求调用，返回当前允许的 Origin 列表
type OriginsFunc func() []string

// LimitsFunc 每次请求调用，返回窗口内允许的请求数与窗口长度
type LimitsFunc func() (maxRequests int, window time.Duration)

// CORS 只回显白名单内的 Origin
func CORS(origins OriginsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" && originAllowed(origins(), origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == origin {
			return true
		}
	}
	return false
}

// Secure 常用安全响应头，HSTS 只在 TLS 连接上发送
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter 按客户端 IP 的令牌桶集合
type ipLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	window  time.Duration
}

// apply 参数变化时丢弃已有令牌桶，按新参数重新计数
func (l *ipLimiter) apply(maxRequests int, window time.Duration) {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	limit := rate.Every(window / time.Duration(maxRequests))
	if limit == l.limit && maxRequests == l.burst {
		return
	}
	l.limit, l.burst, l.window = limit, maxRequests, window
	clear(l.clients)
}

func (l *ipLimiter) allow(ip string, maxRequests int, window time.Duration) bool {
	now := time.Now()

	l.mu.Lock()
	l.apply(maxRequests, window)
	cl, ok := l.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	l.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// sweep 移除超过三个窗口未出现的客户端
func (l *ipLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idle := 3 * l.window
	if idle < time.Minute {
		idle = time.Minute
	}
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) > idle {
			delete(l.clients, ip)
		}
	}
}

// RateLimiter 按 IP 限流。limits 每次请求读取，ctx 结束后停止后台清理
func RateLimiter(ctx context.Context, limits LimitsFunc) gin.HandlerFunc {
	l := &ipLimiter{clients: make(map[string]*client)}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.sweep(now)
			}
		}
	}()

	return func(c *gin.Context) {
		maxRequests, window := limits()
		if !l.allow(c.ClientIP(), maxRequests, window) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
