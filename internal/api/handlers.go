package api

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colbywhitledge-web/trader-hub-v1/internal/cache"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/engine"
	"github.com/colbywhitledge-web/trader-hub-v1/internal/model"
)

// AnalyzeRequest is the inbound payload: one symbol's bar series plus
// the optional collaborator inputs.
type AnalyzeRequest struct {
	Bars     []model.Bar            `json:"bars" binding:"required"`
	News     []model.NewsItem       `json:"news,omitempty"`
	Levels   map[string]interface{} `json:"levels,omitempty"`
	Snapshot *SnapshotInput         `json:"indicator_snapshot,omitempty"`
}

// SnapshotInput carries prior-period MA readings; absent fields fall
// back to the locally computed series.
type SnapshotInput struct {
	PrevSMA20  *float64 `json:"prev_sma20,omitempty"`
	PrevSMA50  *float64 `json:"prev_sma50,omitempty"`
	PrevSMA200 *float64 `json:"prev_sma200,omitempty"`
}

func (si *SnapshotInput) toEngine() *engine.IndicatorSnapshot {
	if si == nil {
		return nil
	}
	snap := &engine.IndicatorSnapshot{
		PrevSMA20:  math.NaN(),
		PrevSMA50:  math.NaN(),
		PrevSMA200: math.NaN(),
	}
	if si.PrevSMA20 != nil {
		snap.PrevSMA20 = *si.PrevSMA20
	}
	if si.PrevSMA50 != nil {
		snap.PrevSMA50 = *si.PrevSMA50
	}
	if si.PrevSMA200 != nil {
		snap.PrevSMA200 = *si.PrevSMA200
	}
	return snap
}

// handleAnalyze runs the pipeline for one symbol. Responses are cached
// by symbol + latest bar date; a hit skips recomputation entirely.
func (s *Server) handleAnalyze(c *gin.Context) {
	symbol := c.Param("symbol")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Bars) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bars are required"})
		return
	}

	key := cache.Key(symbol, req.Bars[len(req.Bars)-1].Date)
	if s.cache != nil {
		var cached engine.Result
		if err := s.cache.Get(c.Request.Context(), key, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	result, err := s.engine.Analyze(req.Bars, engine.Options{
		Levels:   model.NormalizeLevels(req.Levels),
		News:     req.News,
		Snapshot: req.Snapshot.toEngine(),
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if s.cache != nil {
		s.cache.Set(c.Request.Context(), key, result)
	}
	if s.repo != nil {
		asOf := req.Bars[len(req.Bars)-1].Date
		if err := s.repo.SaveSnapshot(c.Request.Context(), symbol, asOf, result.Signals, result.Outlook); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist snapshot")
		}
	}

	c.JSON(http.StatusOK, result)
}

// handleSnapshots returns recent persisted runs for a symbol.
func (s *Server) handleSnapshots(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "snapshot store not configured"})
		return
	}
	snaps, err := s.repo.LatestSnapshots(c.Request.Context(), c.Param("symbol"), 10)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snapshots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snaps})
}
