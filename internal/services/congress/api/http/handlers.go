package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
	"github.com/statecraft/congress/internal/platform/httpx"
	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerMemberRequest struct {
	Principal string `json:"principal"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	State     string `json:"state"`
	District  int    `json:"district"`
}

func (h *Handler) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerMemberRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	role, ok := member.ParseRole(req.Role)
	if !ok {
		httpx.WriteDomainError(w, apperrors.New(apperrors.CodeInvalidRole, "unknown member role"))
		return
	}

	m, err := h.svc.AddMember(r.Context(), callerPrincipal(r.Context()), member.RegisterInput{
		Principal: req.Principal,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		State:     req.State,
		District:  req.District,
	})
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toMemberView(m, h.svc.Now()))
}

func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMember(r.Context(), chi.URLParam(r, "principal"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMemberView(m, h.svc.Now()))
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListMembers(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	at := h.svc.Now()
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, toMemberView(m, at))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"members": views})
}

type proposeBillRequest struct {
	Title          string   `json:"title"`
	EnactingClause string   `json:"enacting_clause"`
	EffectiveAt    string   `json:"effective_at"`
	Sponsors       []string `json:"sponsors"`
	Cosponsors     []string `json:"cosponsors"`
	Sections       []string `json:"sections"`
	Definitions    []string `json:"definitions"`
}

func (h *Handler) handleProposeBill(w http.ResponseWriter, r *http.Request) {
	var req proposeBillRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	effectiveAt, err := time.Parse(time.RFC3339, req.EffectiveAt)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "effective_at must be an RFC 3339 timestamp", nil)
		return
	}

	b, err := h.svc.ProposeBill(r.Context(), callerPrincipal(r.Context()), bill.ProposeInput{
		Title:          req.Title,
		EnactingClause: req.EnactingClause,
		EffectiveAt:    effectiveAt,
		Sponsors:       req.Sponsors,
		Cosponsors:     req.Cosponsors,
		Sections:       req.Sections,
		Definitions:    req.Definitions,
	})
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toBillView(b))
}

func (h *Handler) handleGetBill(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.WriteDomainError(w, apperrors.New(apperrors.CodeInvalidBillIndex, "bill index must be an integer"))
		return
	}
	b, err := h.svc.GetBill(r.Context(), index)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBillView(b))
}

func (h *Handler) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListBills(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	views := make([]billView, 0, len(bills))
	for _, b := range bills {
		views = append(views, toBillView(b))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"bills": views})
}

type castVoteRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.WriteDomainError(w, apperrors.New(apperrors.CodeInvalidBillIndex, "bill index must be an integer"))
		return
	}
	var req castVoteRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	decision, ok := bill.ParseDecision(req.Decision)
	if !ok {
		httpx.WriteDomainError(w, apperrors.New(apperrors.CodeInvalidDecision, "decision must be yea, nay or abstain"))
		return
	}

	b, err := h.svc.CastVote(r.Context(), callerPrincipal(r.Context()), index, decision)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBillView(b))
}

type nominateMemberRequest struct {
	Candidate string `json:"candidate"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	State     string `json:"state"`
	District  int    `json:"district"`
}

func (h *Handler) handleNominateMember(w http.ResponseWriter, r *http.Request) {
	var req nominateMemberRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return
	}
	role, ok := member.ParseRole(req.Role)
	if !ok {
		httpx.WriteDomainError(w, apperrors.New(apperrors.CodeInvalidRole, "unknown member role"))
		return
	}

	nom, err := h.svc.NominateMember(r.Context(), callerPrincipal(r.Context()), nomination.Input{
		Candidate: req.Candidate,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		State:     req.State,
		District:  req.District,
	})
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toNominationView(nom, false))
}

func (h *Handler) handleRatifyMember(w http.ResponseWriter, r *http.Request) {
	nom, admitted, err := h.svc.RatifyMember(r.Context(), callerPrincipal(r.Context()), chi.URLParam(r, "candidate"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toNominationView(nom, admitted))
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	entries, err := h.svc.Journal(r.Context(), limit)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	views := make([]journalEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toJournalEntryView(entry))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": views})
}
