package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/cache"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/report"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/review"
)

// apiError writes the standardized error envelope.
func (s *Server) apiError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, c.GetString("correlation_id")))
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// handleSynthesize runs the pipeline for one patient. The optional format
// query selects the response rendering (json, md, latex); the structured
// summary is the default.
func (s *Server) handleSynthesize(c *gin.Context) {
	var data domain.PatientData
	if err := c.ShouldBindJSON(&data); err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid request body", err.Error())
		return
	}
	if err := data.Validate(); err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid patient data", err.Error())
		return
	}

	format := c.DefaultQuery("format", "json")
	renderer, err := report.ForFormat(format, s.deps.Catalog)
	if err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Unknown report format", format)
		return
	}

	started := time.Now()
	summary, cached := s.cachedSummary(c, &data)
	if summary == nil {
		summary, err = s.deps.Synthesizer.Synthesize(c.Request.Context(), &data)
		if err != nil {
			s.apiError(c, http.StatusUnprocessableEntity, domain.ErrCodeSynthesis, "Synthesis failed", err.Error())
			return
		}
	}

	summaryID := s.persistSummary(c, &data, summary, time.Since(started))
	if summaryID != "" {
		c.Header("X-Summary-ID", summaryID)
	}
	if cached {
		c.Header("X-Cache", "HIT")
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, summary); err != nil {
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer, "Report rendering failed", err.Error())
		return
	}
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}

// cachedSummary consults the summary cache when configured. Misses and
// cache faults both report (nil, false); a cache must never fail a request.
func (s *Server) cachedSummary(c *gin.Context, data *domain.PatientData) (*domain.PatientSummary, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}

	key, err := cache.Key(data)
	if err != nil {
		return nil, false
	}

	summary, hit, err := s.deps.Cache.Get(c.Request.Context(), key)
	if err != nil {
		s.logger.WithError(err).Warn("Summary cache lookup failed")
		return nil, false
	}
	if hit {
		return summary, true
	}
	return nil, false
}

// persistSummary stores the synthesis result when a repository and, where
// configured, the cache are available. Returns the record ID, or "".
func (s *Server) persistSummary(c *gin.Context, data *domain.PatientData, summary *domain.PatientSummary, elapsed time.Duration) string {
	if s.deps.Cache != nil {
		if key, err := cache.Key(data); err == nil {
			if err := s.deps.Cache.Set(c.Request.Context(), key, summary, 0); err != nil {
				s.logger.WithError(err).Warn("Summary cache store failed")
			}
		}
	}

	if s.deps.Repository == nil {
		return ""
	}

	record := &domain.SummaryRecord{
		ID:               uuid.New().String(),
		PatientID:        data.PatientID,
		RequestID:        c.GetString("correlation_id"),
		Summary:          summary,
		LabCount:         len(data.Labs),
		SkippedCount:     len(summary.Skipped),
		ProcessingTimeMs: int(elapsed.Milliseconds()),
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.deps.Repository.Save(c.Request.Context(), record); err != nil {
		s.logger.WithFields(logrus.Fields{
			"patient_id": data.PatientID,
			"error":      err,
		}).Error("Failed to persist summary record")
		return ""
	}
	return record.ID
}

// handleGetSummary retrieves a persisted summary record.
func (s *Server) handleGetSummary(c *gin.Context) {
	if s.deps.Repository == nil {
		s.apiError(c, http.StatusNotImplemented, domain.ErrCodeDatabase, "Summary persistence is not configured", "")
		return
	}

	record, err := s.deps.Repository.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if isNotFound(err) {
			s.apiError(c, http.StatusNotFound, domain.ErrCodeDatabase, "Summary not found", c.Param("id"))
			return
		}
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to load summary", err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleListPatientSummaries lists a patient's persisted summaries.
func (s *Server) handleListPatientSummaries(c *gin.Context) {
	if s.deps.Repository == nil {
		s.apiError(c, http.StatusNotImplemented, domain.ErrCodeDatabase, "Summary persistence is not configured", "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := s.deps.Repository.ListByPatient(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to list summaries", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": c.Param("id"),
		"count":      len(records),
		"summaries":  records,
	})
}

// handleListAnalytes lists the canonical analytes the catalog supports.
func (s *Server) handleListAnalytes(c *gin.Context) {
	codes := s.deps.Catalog.Codes()

	analytes := make([]gin.H, 0, len(codes))
	for _, code := range codes {
		analyte, err := s.deps.Catalog.Get(code)
		if err != nil {
			continue
		}
		analytes = append(analytes, gin.H{
			"code":           analyte.Code,
			"display_name":   analyte.DisplayName,
			"domain":         analyte.EffectiveDomain(),
			"canonical_unit": analyte.CanonicalUnit,
			"normal_range":   analyte.NormalRange.String(),
			"synonyms":       analyte.Synonyms,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(analytes),
		"analytes": analytes,
	})
}

// handleSaveReview records a clinician's agreement or override on a staging
// conclusion.
func (s *Server) handleSaveReview(c *gin.Context) {
	if s.deps.Reviews == nil {
		s.apiError(c, http.StatusNotImplemented, domain.ErrCodeDatabase, "Review storage is not configured", "")
		return
	}

	var rv review.Review
	if err := c.ShouldBindJSON(&rv); err != nil {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid review body", err.Error())
		return
	}
	if rv.PatientID == "" || rv.AnalyteCode == "" {
		s.apiError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "patient_id and analyte_code are required", "")
		return
	}

	if err := s.deps.Reviews.Save(c.Request.Context(), &rv); err != nil {
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to save review", err.Error())
		return
	}

	c.JSON(http.StatusCreated, rv)
}

// handleListReviews lists stored reviews.
func (s *Server) handleListReviews(c *gin.Context) {
	if s.deps.Reviews == nil {
		s.apiError(c, http.StatusNotImplemented, domain.ErrCodeDatabase, "Review storage is not configured", "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reviews, err := s.deps.Reviews.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.apiError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "Failed to list reviews", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(reviews),
		"reviews": reviews,
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
