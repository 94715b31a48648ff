// Package engine gates automation runs behind an OPA Rego eligibility policy.
package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	automationdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/automation/domain"
	clientdomain "github.com/ArkusBootcamp2026/ClientFlow-AI/internal/client/domain"
)

const policyPackage = "clientflow.automation"

// Default eligibility policy: the automation must be active, the client must
// not be inactive, and kinds that send mail need a deliverable address.
const defaultRegoPolicy = `package clientflow.automation

default allow = false
default reason = "not eligible"

needs_email if {
	input.automation.kind == "scheduled_email"
}
needs_email if {
	input.automation.kind == "meeting_followup"
}

eligible if {
	input.automation.status == "active"
	input.client.status != "inactive"
}

allow if {
	eligible
	not needs_email
}
allow if {
	eligible
	needs_email
	input.client.has_email
}

reason = "automation is paused" if {
	input.automation.status != "active"
}
reason = "client is inactive" if {
	input.automation.status == "active"
	input.client.status == "inactive"
}
reason = "client has no email address" if {
	eligible
	needs_email
	not input.client.has_email
}
`

// Decision is the outcome of an eligibility evaluation.
type Decision struct {
	Allow  bool
	Reason string
}

// Evaluator compiles the eligibility policy once and evaluates it per run.
type Evaluator struct {
	compiler *ast.Compiler
}

// NewEvaluator builds an evaluator. policySource overrides the built-in policy;
// it may be Rego text or a path to a .rego file. Empty uses the default.
func NewEvaluator(policySource string) (*Evaluator, error) {
	src := defaultRegoPolicy
	if s := strings.TrimSpace(policySource); s != "" {
		if strings.HasSuffix(s, ".rego") {
			data, err := os.ReadFile(s)
			if err != nil {
				return nil, fmt.Errorf("read policy file: %w", err)
			}
			src = string(data)
		} else {
			src = s
		}
	}
	compiler, err := ast.CompileModules(map[string]string{"eligibility.rego": src})
	if err != nil {
		return nil, fmt.Errorf("compile eligibility policy: %w", err)
	}
	return &Evaluator{compiler: compiler}, nil
}

// HealthCheck verifies the compiled policy evaluates against a minimal input.
func (e *Evaluator) HealthCheck(ctx context.Context) error {
	d, err := e.eval(ctx, map[string]interface{}{
		"automation": map[string]interface{}{"kind": "ai_summary", "status": "active", "interval_minutes": 0},
		"client":     map[string]interface{}{"status": "active", "has_email": true},
	})
	if err != nil {
		return err
	}
	if !d.Allow {
		return fmt.Errorf("policy denied minimal input: %s", d.Reason)
	}
	return nil
}

// Evaluate decides whether the automation may run against the client right now.
func (e *Evaluator) Evaluate(ctx context.Context, a *automationdomain.Automation, c *clientdomain.Client) (Decision, error) {
	input := map[string]interface{}{
		"automation": map[string]interface{}{
			"kind":             string(a.Kind),
			"status":           string(a.Status),
			"interval_minutes": a.IntervalMinutes,
		},
		"client": map[string]interface{}{
			"status":    string(c.Status),
			"has_email": c.EffectiveEmail() != "",
		},
	}
	return e.eval(ctx, input)
}

func (e *Evaluator) eval(ctx context.Context, input map[string]interface{}) (Decision, error) {
	out := Decision{}

	allowQuery := rego.New(
		rego.Query("data."+policyPackage+".allow"),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	allowRS, err := allowQuery.Eval(ctx)
	if err != nil {
		return out, fmt.Errorf("eval allow: %w", err)
	}
	if len(allowRS) > 0 && len(allowRS[0].Expressions) > 0 {
		if v, ok := allowRS[0].Expressions[0].Value.(bool); ok {
			out.Allow = v
		}
	}
	if out.Allow {
		return out, nil
	}

	reasonQuery := rego.New(
		rego.Query("data."+policyPackage+".reason"),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	reasonRS, err := reasonQuery.Eval(ctx)
	if err == nil && len(reasonRS) > 0 && len(reasonRS[0].Expressions) > 0 {
		if v, ok := reasonRS[0].Expressions[0].Value.(string); ok && v != "" {
			out.Reason = v
		}
	}
	if out.Reason == "" {
		out.Reason = "not eligible"
	}
	return out, nil
}
