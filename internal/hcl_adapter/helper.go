package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/Super-StarX/INIValidator/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// expression objects, so a nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		return false
	}

	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// evalContext exposes the process environment as the env object.
func (l *Loader) evalContext() *hcl.EvalContext {
	environ := l.Environ
	if environ == nil {
		return &hcl.EvalContext{Variables: map[string]cty.Value{"env": cty.EmptyObjectVal}}
	}
	vars := make(map[string]cty.Value)
	for _, kv := range environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)}}
}

// evaluate returns the known, non-null value of expr converted to ty.
func evaluate(expr hcl.Expression, evalCtx *hcl.EvalContext, ty cty.Type) (cty.Value, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("value must be known and not null")
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return converted, nil
}

func decodeString(expr hcl.Expression, evalCtx *hcl.EvalContext, target *string) error {
	val, err := evaluate(expr, evalCtx, cty.String)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(val, target)
}

func decodeInt(expr hcl.Expression, evalCtx *hcl.EvalContext, target *int) error {
	val, err := evaluate(expr, evalCtx, cty.Number)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(val, target)
}

// decodeStringList accepts a tuple or list of strings. An empty list yields
// an empty, non-nil slice.
func decodeStringList(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	val, err := evaluate(expr, evalCtx, cty.List(cty.String))
	if err != nil {
		return nil, err
	}
	out := []string{}
	if val.LengthInt() == 0 {
		return out, nil
	}
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return nil, err
	}
	return out, nil
}
