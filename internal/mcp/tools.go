package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
	"github.com/statecraft/congress/internal/services/congress/service"
)

func registerTools(mcpServer *mcp.Server, svc *service.Service) {
	mcp.AddTool(mcpServer, registerMemberTool(), registerMemberHandler(svc))
	mcp.AddTool(mcpServer, proposeBillTool(), proposeBillHandler(svc))
	mcp.AddTool(mcpServer, castVoteTool(), castVoteHandler(svc))
	mcp.AddTool(mcpServer, getBillTool(), getBillHandler(svc))
	mcp.AddTool(mcpServer, listBillsTool(), listBillsHandler(svc))
	mcp.AddTool(mcpServer, nominateMemberTool(), nominateMemberHandler(svc))
	mcp.AddTool(mcpServer, ratifyMemberTool(), ratifyMemberHandler(svc))
}

// MemberResult represents the MCP tool output for a member record.
type MemberResult struct {
	Principal string `json:"principal" jsonschema:"the member's principal"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" jsonschema:"house, senate, non_voting, vice_president or president"`
	State     string `json:"state,omitempty"`
	District  int    `json:"district,omitempty"`
	TermStart string `json:"term_start" jsonschema:"RFC 3339 term start"`
	TermEnd   string `json:"term_end" jsonschema:"RFC 3339 term end"`
}

func toMemberResult(m member.Member) MemberResult {
	return MemberResult{
		Principal: m.Principal,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      m.Role.String(),
		State:     m.State,
		District:  m.District,
		TermStart: m.TermStart.UTC().Format(time.RFC3339),
		TermEnd:   m.TermEnd.UTC().Format(time.RFC3339),
	}
}

// BillResult represents the MCP tool output for a bill.
type BillResult struct {
	Index        int      `json:"index" jsonschema:"position in the bill ledger"`
	Title        string   `json:"title,omitempty"`
	Phase        string   `json:"phase" jsonschema:"house, senate, tie_break, presidential or closed"`
	Passed       bool     `json:"passed"`
	PassedHouse  bool     `json:"passed_house"`
	PassedSenate bool     `json:"passed_senate"`
	Sponsors     []string `json:"sponsors"`
	Sections     []string `json:"sections"`
	EffectiveAt  string   `json:"effective_at" jsonschema:"RFC 3339 effective date"`
}

func toBillResult(b bill.Bill) BillResult {
	return BillResult{
		Index:        b.Index,
		Title:        b.Title,
		Phase:        b.Voting.Phase().String(),
		Passed:       b.Voting.Passed,
		PassedHouse:  b.Voting.PassedHouse,
		PassedSenate: b.Voting.PassedSenate,
		Sponsors:     b.Sponsors,
		Sections:     b.Sections,
		EffectiveAt:  b.EffectiveAt.UTC().Format(time.RFC3339),
	}
}

// NominationResult represents the MCP tool output for a nomination.
type NominationResult struct {
	Candidate     string `json:"candidate"`
	Role          string `json:"role"`
	Ratifications int    `json:"ratifications"`
	Admitted      bool   `json:"admitted"`
}

// RegisterMemberInput represents the MCP tool input for direct registration.
type RegisterMemberInput struct {
	Caller    string `json:"caller" jsonschema:"the administrator principal"`
	Principal string `json:"principal" jsonschema:"the new member's principal"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" jsonschema:"house, senate, non_voting, vice_president or president"`
	State     string `json:"state,omitempty"`
	District  int    `json:"district,omitempty" jsonschema:"required and nonzero for house members"`
}

func registerMemberTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_register_member",
		Description: "Registers a member directly (administrator only)",
	}
}

func registerMemberHandler(svc *service.Service) mcp.ToolHandlerFor[RegisterMemberInput, MemberResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RegisterMemberInput) (*mcp.CallToolResult, MemberResult, error) {
		role, ok := member.ParseRole(input.Role)
		if !ok {
			return nil, MemberResult{}, fmt.Errorf("unknown member role %q", input.Role)
		}
		m, err := svc.AddMember(ctx, input.Caller, member.RegisterInput{
			Principal: input.Principal,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Role:      role,
			State:     input.State,
			District:  input.District,
		})
		if err != nil {
			return nil, MemberResult{}, err
		}
		return nil, toMemberResult(m), nil
	}
}

// ProposeBillInput represents the MCP tool input for proposing a bill.
type ProposeBillInput struct {
	Caller         string   `json:"caller" jsonschema:"the proposing member's principal"`
	Title          string   `json:"title,omitempty"`
	EnactingClause string   `json:"enacting_clause,omitempty"`
	EffectiveAt    string   `json:"effective_at" jsonschema:"RFC 3339 effective date, not in the past"`
	Sponsors       []string `json:"sponsors" jsonschema:"active member principals, at least one"`
	Cosponsors     []string `json:"cosponsors,omitempty"`
	Sections       []string `json:"sections" jsonschema:"bill text sections, at least one"`
	Definitions    []string `json:"definitions,omitempty"`
}

func proposeBillTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_propose_bill",
		Description: "Proposes a bill and appends it to the ledger",
	}
}

func proposeBillHandler(svc *service.Service) mcp.ToolHandlerFor[ProposeBillInput, BillResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProposeBillInput) (*mcp.CallToolResult, BillResult, error) {
		effectiveAt, err := time.Parse(time.RFC3339, input.EffectiveAt)
		if err != nil {
			return nil, BillResult{}, fmt.Errorf("effective_at must be an RFC 3339 timestamp: %w", err)
		}
		b, err := svc.ProposeBill(ctx, input.Caller, bill.ProposeInput{
			Title:          input.Title,
			EnactingClause: input.EnactingClause,
			EffectiveAt:    effectiveAt,
			Sponsors:       input.Sponsors,
			Cosponsors:     input.Cosponsors,
			Sections:       input.Sections,
			Definitions:    input.Definitions,
		})
		if err != nil {
			return nil, BillResult{}, err
		}
		return nil, toBillResult(b), nil
	}
}

// CastVoteInput represents the MCP tool input for casting a vote.
type CastVoteInput struct {
	Caller   string `json:"caller" jsonschema:"the voting member's principal"`
	Index    int    `json:"index" jsonschema:"bill ledger index"`
	Decision string `json:"decision" jsonschema:"yea, nay or abstain"`
}

func castVoteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_cast_vote",
		Description: "Casts a vote on a bill",
	}
}

func castVoteHandler(svc *service.Service) mcp.ToolHandlerFor[CastVoteInput, BillResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CastVoteInput) (*mcp.CallToolResult, BillResult, error) {
		decision, ok := bill.ParseDecision(input.Decision)
		if !ok {
			return nil, BillResult{}, fmt.Errorf("decision must be yea, nay or abstain")
		}
		b, err := svc.CastVote(ctx, input.Caller, input.Index, decision)
		if err != nil {
			return nil, BillResult{}, err
		}
		return nil, toBillResult(b), nil
	}
}

// GetBillInput represents the MCP tool input for reading a bill.
type GetBillInput struct {
	Index int `json:"index" jsonschema:"bill ledger index"`
}

func getBillTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_get_bill",
		Description: "Reads a bill and its voting state by ledger index",
	}
}

func getBillHandler(svc *service.Service) mcp.ToolHandlerFor[GetBillInput, BillResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetBillInput) (*mcp.CallToolResult, BillResult, error) {
		b, err := svc.GetBill(ctx, input.Index)
		if err != nil {
			return nil, BillResult{}, err
		}
		return nil, toBillResult(b), nil
	}
}

// ListBillsInput represents the MCP tool input for listing bills.
type ListBillsInput struct{}

// ListBillsResult represents the MCP tool output for the bill ledger.
type ListBillsResult struct {
	Bills []BillResult `json:"bills" jsonschema:"every bill in ledger order"`
}

func listBillsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_list_bills",
		Description: "Lists every bill in the ledger with its voting state",
	}
}

func listBillsHandler(svc *service.Service) mcp.ToolHandlerFor[ListBillsInput, ListBillsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListBillsInput) (*mcp.CallToolResult, ListBillsResult, error) {
		bills, err := svc.ListBills(ctx)
		if err != nil {
			return nil, ListBillsResult{}, err
		}
		result := ListBillsResult{Bills: make([]BillResult, 0, len(bills))}
		for _, b := range bills {
			result.Bills = append(result.Bills, toBillResult(b))
		}
		return nil, result, nil
	}
}

// NominateMemberInput represents the MCP tool input for nominating a member.
type NominateMemberInput struct {
	Caller    string `json:"caller" jsonschema:"the nominating member's principal"`
	Candidate string `json:"candidate" jsonschema:"the candidate's principal"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" jsonschema:"house or senate"`
	State     string `json:"state,omitempty"`
	District  int    `json:"district,omitempty" jsonschema:"required and nonzero for house nominations"`
}

func nominateMemberTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_nominate_member",
		Description: "Opens a nomination for a new chamber member",
	}
}

func nominateMemberHandler(svc *service.Service) mcp.ToolHandlerFor[NominateMemberInput, NominationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NominateMemberInput) (*mcp.CallToolResult, NominationResult, error) {
		role, ok := member.ParseRole(input.Role)
		if !ok {
			return nil, NominationResult{}, fmt.Errorf("unknown member role %q", input.Role)
		}
		nom, err := svc.NominateMember(ctx, input.Caller, nomination.Input{
			Candidate: input.Candidate,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Role:      role,
			State:     input.State,
			District:  input.District,
		})
		if err != nil {
			return nil, NominationResult{}, err
		}
		return nil, NominationResult{
			Candidate:     nom.Candidate,
			Role:          nom.Role.String(),
			Ratifications: nom.Count(),
		}, nil
	}
}

// RatifyMemberInput represents the MCP tool input for ratifying a nomination.
type RatifyMemberInput struct {
	Caller    string `json:"caller" jsonschema:"the ratifying member's principal"`
	Candidate string `json:"candidate" jsonschema:"the nominated candidate's principal"`
}

func ratifyMemberTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "congress_ratify_member",
		Description: "Ratifies a nomination; admits the candidate once the quorum clears",
	}
}

func ratifyMemberHandler(svc *service.Service) mcp.ToolHandlerFor[RatifyMemberInput, NominationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RatifyMemberInput) (*mcp.CallToolResult, NominationResult, error) {
		nom, admitted, err := svc.RatifyMember(ctx, input.Caller, input.Candidate)
		if err != nil {
			return nil, NominationResult{}, err
		}
		return nil, NominationResult{
			Candidate:     nom.Candidate,
			Role:          nom.Role.String(),
			Ratifications: nom.Count(),
			Admitted:      admitted,
		}, nil
	}
}
