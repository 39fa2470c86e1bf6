package source

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/goliatone/go-props/layering"
)

// HCL represents a Source whose underlying format is HCL.
type HCL struct {
	r        io.Reader
	filename string
}

// FromHCL returns a source that loads its snapshot from HCL read off r. The
// filename only labels diagnostics. Top-level attributes become keys, blocks
// become nested maps with labels as intermediate keys, and repeated blocks of
// the same type merge with later blocks winning.
func FromHCL(r io.Reader, filename string) HCL {
	return HCL{r: r, filename: filename}
}

// Load implements the Source interface.
func (src HCL) Load() (map[string]any, error) {
	b, err := io.ReadAll(src.r)
	if err != nil {
		return nil, err
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(b, src.filename)
	if diags.HasErrors() {
		return nil, &DecodeError{Format: "hcl", Err: diags}
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, &DecodeError{Format: "hcl", Err: fmt.Errorf("unexpected body type %T", file.Body)}
	}
	m, err := hclBodyToMap(body)
	if err != nil {
		return nil, &DecodeError{Format: "hcl", Err: err}
	}
	return m, nil
}

func hclBodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		inner, err := hclBodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}
		node := any(inner)
		for i := len(block.Labels) - 1; i >= 0; i-- {
			node = map[string]any{block.Labels[i]: node}
		}
		if existing, ok := out[block.Type].(map[string]any); ok {
			if addition, ok := node.(map[string]any); ok {
				out[block.Type] = layering.Merge(addition, existing)
				continue
			}
		}
		out[block.Type] = node
	}

	return out, nil
}

// ctyToNative converts a cty value to its most natural Go counterpart.
// Integral numbers become int64, fractional ones float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		big := v.AsBigFloat()
		if big.IsInt() {
			i, _ := big.Int64()
			return i, nil
		}
		f, _ := big.Float64()
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported hcl value type %s", ty.FriendlyName())
	}
}
