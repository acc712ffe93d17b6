package httpx

import (
	"strconv"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/gin-gonic/gin"
)

// ClampInt — ограничение значения v в диапазоне [min, max].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseLimitOffset - читает limit/offset из query с дефолтами и границами.
func ParseLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit))); err == nil {
		limit = ClampInt(v, 1, maxLimit)
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return
}

// ParseSearchQuery — читает term/kind из query и нормализует запрос.
// Пустой term — невалидный запрос (false).
func ParseSearchQuery(c *gin.Context) (domain.Query, bool) {
	q := domain.Query{
		Term: c.Query("term"),
		Kind: c.Query("kind"),
	}
	if q.IsEmpty() {
		return domain.Query{}, false
	}
	return q.Normalized(), true
}
