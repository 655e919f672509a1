package handler

import (
	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/pkg/response"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const (
	maxNormalizeBatch = 500
	maxMatchesLimit   = 50
)

type NormalizeHandler struct {
	uc usecase.NormalizerUsecase
}

func NewNormalizeHandler(uc usecase.NormalizerUsecase) *NormalizeHandler {
	return &NormalizeHandler{uc: uc}
}

func (h *NormalizeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Post("/normalize", h.Normalize)
	grp.Post("/cluster", h.Cluster)
}

// Normalize maps a batch of raw skills onto the taxonomy. Results come back in
// input order; taxonomy lookup failures degrade single entries rather than
// failing the request.
func (h *NormalizeHandler) Normalize(c fiber.Ctx) error {
	var req dto.NormalizeRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	if req.RawSkills == nil {
		return badRequest("raw_skills is required", nil)
	}
	if len(req.RawSkills) > maxNormalizeBatch {
		return badRequest("raw_skills exceeds the batch limit", nil)
	}
	if err := validateNormalizeOptions(req.Options); err != nil {
		return err
	}

	results := h.uc.NormalizeSkills(c.Context(), req.Strings(), req.Options.ToUsecase())
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewNormalizeResponse(results))
}

func (h *NormalizeHandler) Cluster(c fiber.Ctx) error {
	var req dto.ClusterRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	if len(req.RawSkills) > maxNormalizeBatch {
		return badRequest("raw_skills exceeds the batch limit", nil)
	}

	threshold := 0.0
	if req.Threshold != nil {
		threshold = *req.Threshold
		if threshold <= 0 || threshold > 1 {
			return badRequest("threshold must be within (0,1]", nil)
		}
	}

	clusters := h.uc.ClusterSkills(req.RawSkills, threshold)
	if clusters == nil {
		clusters = [][]string{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ClusterResponse{Clusters: clusters})
}

func validateNormalizeOptions(o *dto.NormalizeOptionsRequest) error {
	if o == nil {
		return nil
	}
	if o.ConfidenceThreshold != nil && (*o.ConfidenceThreshold < 0 || *o.ConfidenceThreshold > 1) {
		return badRequest("confidence_threshold must be within [0,1]", nil)
	}
	if o.MaxMatches != nil && (*o.MaxMatches < 1 || *o.MaxMatches > maxMatchesLimit) {
		return badRequest("max_matches must be between 1 and 50", nil)
	}
	return nil
}
