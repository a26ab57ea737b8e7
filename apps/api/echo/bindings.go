package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

const (
	orderingParam = "ordering"
	limitParam    = "limit"
	offsetParam   = "offset"

	defaultLimit = 50
	maxLimit     = 500
)

// Ordering binds `?ordering=name,-created_at`.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Paging binds `?limit=&offset=`; invalid values fall back to the defaults.
type Paging struct {
	Limit  int
	Offset int
}

func (p *Paging) Bind(ctx echo.Context) {
	p.Limit = defaultLimit
	if v, err := strconv.Atoi(ctx.QueryParam(limitParam)); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if v, err := strconv.Atoi(ctx.QueryParam(offsetParam)); err == nil && v > 0 {
		p.Offset = v
	}
}
