package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const accessQuery = "data.rsvp.access.allow"

// DefaultPolicy is the built-in access policy. Guests only reach their own event; admin methods need
// the admin principal.
const DefaultPolicy = `package rsvp.access

default allow := false

allow if input.required == "public"

allow if {
	input.required == "admin"
	input.principal.kind == "admin"
}

allow if {
	input.required == "guest"
	input.principal.kind == "guest"
	input.principal.event_id != ""
	not event_mismatch
}

event_mismatch if {
	input.request.event_id != ""
	input.request.event_id != input.principal.event_id
}
`

// OPAEvaluator evaluates access requests against a compiled Rego policy.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles DefaultPolicy.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	return NewOPAEvaluatorWithPolicy(ctx, DefaultPolicy)
}

// NewOPAEvaluatorWithPolicy compiles policy, which must define data.rsvp.access.allow.
func NewOPAEvaluatorWithPolicy(ctx context.Context, policy string) (*OPAEvaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"access.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(accessQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// Allow evaluates req. An undefined or non-boolean result denies.
func (e *OPAEvaluator) Allow(ctx context.Context, req AccessRequest) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(req)))
	if err != nil {
		return false, fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}

// HealthCheck evaluates a fixed public request; it fails if the engine cannot produce a decision.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	allowed, err := e.Allow(ctx, AccessRequest{
		Method:        "/grpc.health.v1.Health/Check",
		Required:      AccessPublic,
		PrincipalKind: PrincipalAnonymous,
	})
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("access policy denied public request")
	}
	return nil
}

func buildInput(req AccessRequest) map[string]interface{} {
	kind := req.PrincipalKind
	if kind == "" {
		kind = PrincipalAnonymous
	}
	return map[string]interface{}{
		"method":   req.Method,
		"required": req.Required,
		"principal": map[string]interface{}{
			"kind":     kind,
			"event_id": req.PrincipalEventID,
		},
		"request": map[string]interface{}{
			"event_id": req.RequestEventID,
		},
	}
}
