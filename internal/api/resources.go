package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/resource"
)

// registerResource mounts list, create, patch and delete for one collection.
// Every query parameter other than page and per_page is passed to the
// repository as a filter.
func registerResource[T any](g *gin.RouterGroup, path string, repo *resource.Repo[T], pag config.PaginationConfig) {
	g.GET(path, func(c *gin.Context) {
		page, perPage, err := pageParams(c, pag, "page", "per_page")
		if err != nil {
			renderError(c, err)
			return
		}
		filters := map[string]string{}
		for k, v := range c.Request.URL.Query() {
			if k == "page" || k == "per_page" || len(v) == 0 {
				continue
			}
			filters[k] = v[0]
		}
		p, err := repo.List(c.Request.Context(), resource.Query{Filters: filters, Page: page, PerPage: perPage})
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	g.POST(path, func(c *gin.Context) {
		item := new(T)
		if err := c.ShouldBindJSON(item); err != nil {
			renderError(c, bindError(err))
			return
		}
		if err := repo.Create(c.Request.Context(), item); err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})

	g.GET(path+"/:id", func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		item, err := repo.Get(c.Request.Context(), id)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.PATCH(path+"/:id", func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		var patch map[string]any
		if err := c.ShouldBindJSON(&patch); err != nil {
			renderError(c, bindError(err))
			return
		}
		item, err := repo.Update(c.Request.Context(), id, patch)
		if err != nil {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.DELETE(path+"/:id", func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			renderError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
