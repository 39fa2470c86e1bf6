package props

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func TestRegistryMergeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	nameList := gen.SliceOfN(6, gen.Identifier())

	properties.Property("overriding keeps position, new names append", prop.ForAll(
		func(raw []string, overrideIdx, freshSeed int) bool {
			names := uniqueNames(raw)
			if len(names) < 2 {
				return true
			}

			parentProps := make([]*Definition, len(names))
			for i, name := range names {
				parentProps[i] = String(name, fmt.Sprintf("parent-%d", i))
			}
			parent := MustDefine("Parent", WithProps(parentProps...))

			overridden := names[overrideIdx%len(names)]
			fresh := fmt.Sprintf("extra_%d", freshSeed)
			childProps := []*Definition{String(overridden, "child")}
			if fresh != overridden {
				childProps = append(childProps, String(fresh, "new"))
			}
			child := MustDefine("Child", Extends(parent), WithProps(childProps...))

			got := child.Defs().Names()
			want := append([]string{}, names...)
			if fresh != overridden {
				want = append(want, fresh)
			}
			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}

			def, ok := child.Defs().Get(overridden)
			if !ok || def.Default() != "child" {
				return false
			}
			// The parent registry is untouched.
			parentDef, _ := parent.Defs().Get(overridden)
			return parentDef.Default() != "child" && parent.Defs().Len() == len(names)
		},
		nameList, gen.IntRange(0, 100), gen.IntRange(0, 1000),
	))

	properties.Property("merging is transitive across three generations", prop.ForAll(
		func(base, mid, top string) bool {
			grandparent := MustDefine("Grandparent", WithProps(
				String("shared", base),
				String("old", "gp"),
			))
			parent := MustDefine("Parent", Extends(grandparent), WithProps(
				String("shared", mid),
				String("middle", "p"),
			))
			child := MustDefine("Child", Extends(parent), WithProps(
				String("shared", top),
			))

			def, ok := child.Defs().Get("shared")
			if !ok || def.Default() != top {
				return false
			}
			names := child.Defs().Names()
			want := []string{"shared", "old", "middle"}
			if len(names) != len(want) {
				return false
			}
			for i := range want {
				if names[i] != want[i] {
					return false
				}
			}
			instance := child.MustNew(nil)
			return instance.MustGet("old") == "gp" && instance.MustGet("middle") == "p"
		},
		gen.AlphaString(), gen.AlphaString(), gen.AlphaString(),
	))

	properties.Property("two parents always fail, whatever their options", prop.ForAll(
		func(aNames, bNames []string) bool {
			aProps := make([]*Definition, 0)
			for i, name := range uniqueNames(aNames) {
				aProps = append(aProps, String(name, fmt.Sprintf("a-%d", i)))
			}
			bProps := make([]*Definition, 0)
			for i, name := range uniqueNames(bNames) {
				bProps = append(bProps, String(name, fmt.Sprintf("b-%d", i)))
			}
			a := MustDefine("A", WithProps(aProps...))
			b := MustDefine("B", WithProps(bProps...))

			_, err := Define("C", Extends(a, b))
			return err == ErrDiamondInheritance
		},
		nameList, nameList,
	))

	properties.TestingRun(t)
}

func TestContainerValueProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("nil and undefined resolve to the default", prop.ForAll(
		func(def string) bool {
			d := NewDefinition("some_value", def, WithNilToDefault())
			fromNil, err1 := d.Validate(nil)
			fromUndefined, err2 := d.Validate(Undefined)
			return err1 == nil && err2 == nil && fromNil == def && fromUndefined == def
		},
		gen.AlphaString(),
	))

	properties.Property("constructing with no values yields every default", prop.ForAll(
		func(raw []string, defaults []int) bool {
			names := uniqueNames(raw)
			if len(names) == 0 || len(defaults) == 0 {
				return true
			}
			props := make([]*Definition, len(names))
			for i, name := range names {
				props[i] = Integer(name, defaults[i%len(defaults)])
			}
			container := MustDefine("Defaulted", WithProps(props...)).MustNew(nil)
			for i, name := range names {
				value, err := container.Get(name)
				if err != nil || value != defaults[i%len(defaults)] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Identifier()), gen.SliceOfN(5, gen.Int()),
	))

	properties.Property("nested path writes round-trip", prop.ForAll(
		func(host string) bool {
			child := MustDefine("Child", WithProps(String("host", "some.where")))
			dad := MustDefine("Dad", WithProps(Nested("child", child)))
			container := dad.MustNew(nil)

			if err := container.SetPath([]string{"child", "host"}, host); err != nil {
				return false
			}
			nested, err := container.Get("child")
			if err != nil {
				return false
			}
			value, err := nested.(*Container).Get("host")
			return err == nil && value == host
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
