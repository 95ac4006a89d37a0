package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type createProposalRequestPayload struct {
	Proposer    string `json:"proposer"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type voteRequestPayload struct {
	Voter   string `json:"voter"`
	Support bool   `json:"support"`
}

// CreateProposal @Summary Create a governance proposal
// @Description Opens a proposal with a voting window; only financiers may propose
// @Accept json
// @Produce json
// @Param request body createProposalRequestPayload true "Proposal request"
// @Success 200 {object} PublicResponse[services.ProposalPublic] "Created proposal"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/proposals [post]
func (h *Handler) CreateProposal(request *http.Request) (*Result, *types.Error) {
	payload := &createProposalRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	proposer, err := parseAccountId(payload.Proposer, "proposer")
	if err != nil {
		return nil, err
	}

	proposal, err := h.services.CreateProposal(request.Context(), proposer, payload.Title, payload.Description)
	if err != nil {
		return nil, err
	}
	return NewResult(proposal), nil
}

// VoteOnProposal @Summary Vote on a proposal
// @Description Casts one weighted financier vote; resolution is checked synchronously
// @Accept json
// @Produce json
// @Param proposalId path string true "Proposal id"
// @Param request body voteRequestPayload true "Vote request"
// @Success 200 {object} PublicResponse[services.ProposalPublic] "Updated proposal"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/proposals/{proposalId}/votes [post]
func (h *Handler) VoteOnProposal(request *http.Request) (*Result, *types.Error) {
	proposalId, err := parseSubjectId(chi.URLParam(request, "proposalId"), "proposalId")
	if err != nil {
		return nil, err
	}
	payload := &voteRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	voter, err := parseAccountId(payload.Voter, "voter")
	if err != nil {
		return nil, err
	}

	proposal, err := h.services.VoteOnProposal(request.Context(), proposalId, voter, payload.Support)
	if err != nil {
		return nil, err
	}
	return NewResult(proposal), nil
}

// ExpireProposal @Summary Close out an expired proposal
// @Description Marks a proposal rejected when its deadline passed without approval
// @Produce json
// @Param proposalId path string true "Proposal id"
// @Success 200 {object} PublicResponse[services.ProposalPublic] "Resolved proposal"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/proposals/{proposalId}/expire [post]
func (h *Handler) ExpireProposal(request *http.Request) (*Result, *types.Error) {
	proposalId, err := parseSubjectId(chi.URLParam(request, "proposalId"), "proposalId")
	if err != nil {
		return nil, err
	}

	proposal, err := h.services.ExpireProposal(request.Context(), proposalId)
	if err != nil {
		return nil, err
	}
	return NewResult(proposal), nil
}

// GetProposal @Summary Get a proposal
// @Produce json
// @Param proposalId path string true "Proposal id"
// @Success 200 {object} PublicResponse[services.ProposalPublic] "Proposal"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/proposals/{proposalId} [get]
func (h *Handler) GetProposal(request *http.Request) (*Result, *types.Error) {
	proposalId, err := parseSubjectId(chi.URLParam(request, "proposalId"), "proposalId")
	if err != nil {
		return nil, err
	}

	proposal, err := h.services.GetProposal(request.Context(), proposalId)
	if err != nil {
		return nil, err
	}
	return NewResult(proposal), nil
}

// ListProposals @Summary List proposals
// @Description Retrieves proposals, newest first
// @Produce json
// @Param pagination_key query string false "Pagination key to fetch the next page of proposals"
// @Success 200 {object} PublicResponse[[]services.ProposalPublic]{array} "List of proposals and pagination token"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/proposals [get]
func (h *Handler) ListProposals(request *http.Request) (*Result, *types.Error) {
	paginationKey := request.URL.Query().Get("pagination_key")

	proposals, newPaginationKey, err := h.services.ListProposals(request.Context(), paginationKey)
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(proposals, newPaginationKey), nil
}
