package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

type StatsHandler struct {
	log *zap.Logger
}

func NewStatsHandler(log *zap.Logger) *StatsHandler {
	return &StatsHandler{log: log}
}

// distributionBuckets partitions percentages into ten-point bands.
var distributionBuckets = []string{
	"0-9", "10-19", "20-29", "30-39", "40-49",
	"50-59", "60-69", "70-79", "80-89", "90-100",
}

// TestStats summarizes completed attempts for a test and renders a
// score-distribution chart. The chart options are returned as echarts
// JSON for the client to render.
func (h *StatsHandler) TestStats(c *gin.Context) {
	store := repository.NewTestStore(database.DB)

	test, err := store.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if test == nil {
		respondError(c, repository.ErrNotFound)
		return
	}

	results, err := store.ResultsForTest(c.Request.Context(), test.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	var passed int
	var sum float64
	counts := make([]int, len(distributionBuckets))
	for _, r := range results {
		if r.IsPassed {
			passed++
		}
		sum += r.Percentage
		counts[bucketFor(r.Percentage)]++
	}

	average := 0.0
	passRate := 0.0
	if len(results) > 0 {
		average = sum / float64(len(results))
		passRate = float64(passed) / float64(len(results)) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"test_id":            test.ID,
		"title":              test.Title,
		"attempts":           len(results),
		"passed":             passed,
		"pass_rate":          passRate,
		"average_percentage": average,
		"chart":              distributionChart(test.Title, counts).JSON(),
	})
}

func bucketFor(percentage float64) int {
	bucket := int(percentage / 10)
	if bucket >= len(distributionBuckets) {
		bucket = len(distributionBuckets) - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	return bucket
}

func distributionChart(title string, counts []int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Score Distribution",
			Subtitle: title,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Percentage band"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Attempts", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	items := make([]opts.BarData, 0, len(counts))
	for _, count := range counts {
		items = append(items, opts.BarData{Value: count})
	}
	bar.SetXAxis(distributionBuckets).AddSeries("attempts", items)
	return bar
}

// Overview reports platform-wide headline numbers for the admin
// dashboard.
func (h *StatsHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	counts := gin.H{}

	for name, model := range map[string]interface{}{
		"users":       &models.User{},
		"courses":     &models.Course{},
		"groups":      &models.Group{},
		"tests":       &models.Test{},
		"enrollments": &models.Enrollment{},
	} {
		var n int64
		if err := database.DB.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			h.log.Error("overview count failed", zap.String("entity", name), zap.Error(err))
			respondError(c, fmt.Errorf("count %s: %w", name, err))
			return
		}
		counts[name] = n
	}

	c.JSON(http.StatusOK, counts)
}
