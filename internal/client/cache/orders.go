package cache

import (
	"context"
	"net/http"

	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/client/search"
)

// Orders is the order cache plus the server-side advanced search.
type Orders struct {
	*Cache[models.Order]
	searchPath string
}

func NewOrders(path, searchPath string, c client.Client, opts ...Option) *Orders {
	return &Orders{
		Cache:      New("orders", path, c, models.OrdersV1, opts...),
		searchPath: searchPath,
	}
}

// SearchAdvanced replaces the collection with the server's matches for f.
// It is an alternate load, not a refinement of the current collection.
func (o *Orders) SearchAdvanced(ctx context.Context, f search.OrderFilters) error {
	return o.fetch(ctx, "search", client.Request{
		Method: http.MethodGet,
		Path:   o.searchPath,
		Query:  f.Query(),
	})
}
