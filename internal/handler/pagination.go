package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"Community_Feed/internal/service"
)

// pageParam 缺省为第 1 页；非法值返回 0，由 service 判定为 invalid page
func pageParam(c *gin.Context) int {
	raw := c.Query("page")
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0
	}
	return page
}

// pageURL 当前请求的绝对地址，只替换 page 参数；第 1 页去掉 page
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// writePage 统一的分页响应 {count, next, previous, results}
func writePage[T any](c *gin.Context, p *service.Page[T], shape func(T) gin.H) {
	var next, previous any
	if p.HasNext() {
		next = pageURL(c, p.Number+1)
	}
	if p.HasPrevious() {
		previous = pageURL(c, p.Number-1)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    p.Count,
		"next":     next,
		"previous": previous,
		"results":  listJSON(p.Items, shape),
	})
}

// idParam 路径里的 id 不合法时按资源不存在处理
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}
