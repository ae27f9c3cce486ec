package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gogotex/cocktails/internal/pipeline"
	"github.com/gogotex/cocktails/internal/recipe"
	"github.com/gogotex/cocktails/internal/recipe/repository"
	"github.com/gogotex/cocktails/internal/recipe/service"
	"github.com/gogotex/cocktails/pkg/logger"
)

const defaultTop = 10

func RegisterRecipeRoutes(r *gin.Engine, svc service.Service) {
	r.GET("/api/recipes", func(c *gin.Context) {
		var (
			list []*recipe.Recipe
			err  error
		)
		if ing := c.Query("ingredient"); ing != "" {
			list, err = svc.WithIngredient(c.Request.Context(), ing)
		} else {
			list, err = svc.All(c.Request.Context())
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/api/recipes/top", func(c *gin.Context) {
		n := defaultTop
		if v := c.Query("n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer"})
				return
			}
			n = parsed
		}
		rounded := c.Query("rounded") == "true"
		list, err := svc.TopRated(c.Request.Context(), n, rounded)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/api/recipes/:name", func(c *gin.Context) {
		rec, err := svc.ByName(c.Request.Context(), c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	r.POST("/api/recipes/:name/reviews", func(c *gin.Context) {
		var req struct {
			Rating *int       `json:"rating"`
			When   *time.Time `json:"when,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Rating == nil || *req.Rating < 0 || *req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
			return
		}
		when := time.Now().UTC()
		if req.When != nil {
			when = *req.When
		}
		rv, err := svc.AddReview(c.Request.Context(), c.Param("name"), uint8(*req.Rating), when)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rv)
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case pipeline.IsConfigurationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrReadOnly):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
	}
}
