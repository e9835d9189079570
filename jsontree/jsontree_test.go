package jsontree

import (
	"strings"
	"testing"

	"github.com/deepteams/nexus"
)

func TestParseEmptyArray(t *testing.T) {
	n, err := FromString("[]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n.Type != Array {
		t.Errorf("type = %v, want Array", n.Type)
	}
	if n.NChildren() != 0 {
		t.Errorf("NChildren = %d, want 0", n.NChildren())
	}
}

func TestParseEmptyObject(t *testing.T) {
	n, err := FromString("{}")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n.Type != Object || n.NChildren() != 0 {
		t.Errorf("got %v with %d children", n.Type, n.NChildren())
	}
}

func TestParseValues(t *testing.T) {
	n, err := FromString(`[1, -2.5, "str", true, false, null, 1e3]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	wantTypes := []NodeType{Integer, FPNumber, String, True, False, Null, FPNumber}
	if n.NChildren() != len(wantTypes) {
		t.Fatalf("NChildren = %d, want %d", n.NChildren(), len(wantTypes))
	}
	for i, w := range wantTypes {
		if n.Children[i].Type != w {
			t.Errorf("child %d type = %v, want %v", i, n.Children[i].Type, w)
		}
	}
	if n.Children[0].Text != "1" || n.Children[1].Text != "-2.5" || n.Children[2].Text != "str" {
		t.Errorf("texts = %q %q %q", n.Children[0].Text, n.Children[1].Text, n.Children[2].Text)
	}
}

func TestParseNestedObject(t *testing.T) {
	n, err := FromString(`{"a": [1, 2], "b": {"c": "d"}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	a := n.ObjectGet("a", Array)
	if a == nil || a.NChildren() != 2 {
		t.Fatalf("member a missing or malformed: %v", a)
	}
	b := n.ObjectGet("b", Object)
	if b == nil {
		t.Fatal("member b missing")
	}
	c := b.ObjectGet("c", String)
	if c == nil || c.Text != "d" {
		t.Errorf("b.c = %v", c)
	}
}

func TestParseStringEscapes(t *testing.T) {
	n, err := FromString(`["a\nb", "q\"q", "back\\slash", "sol\/idus"]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"a\nb", `q"q`, `back\slash`, "sol/idus"}
	for i, w := range want {
		if n.Children[i].Text != w {
			t.Errorf("child %d = %q, want %q", i, n.Children[i].Text, w)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"", "5", `"str"`, "[", "[1,", "[1 2]", `{"a"}`, `{"a":}`, `{1: 2}`, "[tru]", "[01]",
	} {
		if _, err := FromString(input); err == nil {
			t.Errorf("FromString(%q): expected an error", input)
		}
	}
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := FromString("[\n  flase\n]")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Line 2") {
		t.Errorf("error %q does not name the line", err)
	}
}

func TestPrintRoundTrip(t *testing.T) {
	inputs := []string{
		`[]`,
		`{}`,
		`[1, 2.5, "x", true, false, null]`,
		`{"name": "value", "list": [1, [2, [3]]], "obj": {"k": null}}`,
		`["escape\nme", "and\tme"]`,
	}
	for _, input := range inputs {
		n, err := FromString(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		for _, level := range []int{0, 2, 100} {
			printed := Sprint(n, level)
			back, err := FromString(printed)
			if err != nil {
				t.Fatalf("reparse of %q (level %d): %v", printed, level, err)
			}
			if !n.Equal(back) {
				t.Errorf("round trip at level %d changed the tree:\n%s", level, printed)
			}
		}
	}
}

func TestReadableRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "with \"quotes\"", "tab\tnl\ncr\r", `back\slash`} {
		enc := ToReadable(s)
		dec, err := FromReadable(enc[1 : len(enc)-1])
		if err != nil {
			t.Fatalf("FromReadable(%q): %v", enc, err)
		}
		if dec != s {
			t.Errorf("round trip %q -> %q -> %q", s, enc, dec)
		}
	}
}

func TestNodeLookups(t *testing.T) {
	n, _ := FromString(`{"i": 3, "f": 1.5, "s": "x"}`)

	if got := n.ObjectGet("i", Number); got == nil || got.Text != "3" {
		t.Errorf("i lookup = %v", got)
	}
	if got := n.ObjectGet("i", String); got != nil {
		t.Error("type-filtered lookup should reject a mismatched member")
	}
	if got := n.ObjectGet("missing", AnyType); got != nil {
		t.Error("missing member should return nil")
	}
	if _, err := n.ObjectFGet("missing", AnyType); err == nil {
		t.Error("ObjectFGet should error on a missing member")
	}

	arr, _ := FromString(`[10, "s"]`)
	if got := arr.ArrayGet(0, Integer); got == nil || got.Text != "10" {
		t.Errorf("array lookup = %v", got)
	}
	if got := arr.ArrayGet(1, Integer); got != nil {
		t.Error("array type filter should reject a string element")
	}
	if got := arr.ArrayGet(5, AnyType); got != nil {
		t.Error("out-of-range array lookup should return nil")
	}
}

func TestConstantConstructorTags(t *testing.T) {
	if NewTrue().Type != True {
		t.Error("NewTrue tag mismatch")
	}
	if NewFalse().Type != False {
		t.Error("NewFalse tag mismatch")
	}
	if NewNull().Type != Null {
		t.Error("NewNull tag mismatch")
	}
}

func TestBundleScalars(t *testing.T) {
	if v, err := UnbundleBool(BundleBool(true)); err != nil || !v {
		t.Errorf("bool round trip = %v, %v", v, err)
	}
	if v, err := UnbundleInt(BundleInt(-42)); err != nil || v != -42 {
		t.Errorf("int round trip = %v, %v", v, err)
	}
	if v, err := UnbundleFloat(BundleFloat(2.5)); err != nil || v != 2.5 {
		t.Errorf("float round trip = %v, %v", v, err)
	}
	if s, err := UnbundleString(BundleString("hi")); err != nil || s != "hi" {
		t.Errorf("string round trip = %v, %v", s, err)
	}
}

func TestBundleArrays(t *testing.T) {
	ints := []int{1, -2, 3}
	got, err := UnbundleIntArray(BundleIntArray(ints))
	if err != nil {
		t.Fatalf("int array: %v", err)
	}
	for i := range ints {
		if got[i] != ints[i] {
			t.Errorf("int %d = %d, want %d", i, got[i], ints[i])
		}
	}

	floats := []float64{0.5, -1.25}
	gotF, err := UnbundleFloatArray(BundleFloatArray(floats))
	if err != nil {
		t.Fatalf("float array: %v", err)
	}
	for i := range floats {
		if gotF[i] != floats[i] {
			t.Errorf("float %d = %g, want %g", i, gotF[i], floats[i])
		}
	}
}

func TestBundleKeypointRoundTrip(t *testing.T) {
	keys := []nexus.Keypoint{
		{X: 3, Y: 4, XS: 3.5, YS: 4.5, Level: 1, Scale: 2, Sigma: 1.5, Score: 9.25, Ori: 0.5, ID: 11},
		{X: -1, Y: 0, Scale: 1},
	}

	node := BundleKeypointArray(keys)
	got, err := UnbundleKeypointArray(node)
	if err != nil {
		t.Fatalf("unbundle: %v", err)
	}
	if len(got) != len(keys) {
		t.Fatalf("len = %d, want %d", len(got), len(keys))
	}
	for i := range keys {
		if got[i] != keys[i] {
			t.Errorf("key %d = %+v, want %+v", i, got[i], keys[i])
		}
	}

	// And through the printer.
	printed := Sprint(node, 100)
	back, err := FromString(printed)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got2, err := UnbundleKeypointArray(back)
	if err != nil {
		t.Fatalf("unbundle after print: %v", err)
	}
	for i := range keys {
		if got2[i] != keys[i] {
			t.Errorf("printed key %d = %+v, want %+v", i, got2[i], keys[i])
		}
	}
}
