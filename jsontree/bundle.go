package jsontree

import (
	"fmt"
	"strconv"

	"github.com/deepteams/nexus"
)

// Bundle helpers convert between library values and JSON nodes.

// BundleBool returns a true or false node.
func BundleBool(v bool) *Node {
	if v {
		return NewTrue()
	}
	return NewFalse()
}

// BundleInt returns an integer node.
func BundleInt(v int) *Node { return NewInteger(strconv.Itoa(v)) }

// BundleFloat returns a floating-point node.
func BundleFloat(v float64) *Node {
	return NewFPNumber(strconv.FormatFloat(v, 'g', -1, 64))
}

// BundleString returns a string node.
func BundleString(s string) *Node { return NewString(s) }

// BundleIntArray returns an array node of integer elements.
func BundleIntArray(xs []int) *Node {
	n := NewArray()
	for _, x := range xs {
		n.AddChild(BundleInt(x))
	}
	return n
}

// BundleFloatArray returns an array node of floating-point elements.
func BundleFloatArray(xs []float64) *Node {
	n := NewArray()
	for _, x := range xs {
		n.AddChild(BundleFloat(x))
	}
	return n
}

// BundleStringArray returns an array node of string elements.
func BundleStringArray(xs []string) *Node {
	n := NewArray()
	for _, x := range xs {
		n.AddChild(NewString(x))
	}
	return n
}

// BundleKeypoint returns an object node with one member per keypoint
// field.
func BundleKeypoint(key *nexus.Keypoint) *Node {
	n := NewObject()
	n.ObjectAdd("x", BundleInt(int(key.X)))
	n.ObjectAdd("y", BundleInt(int(key.Y)))
	n.ObjectAdd("xs", BundleFloat(float64(key.XS)))
	n.ObjectAdd("ys", BundleFloat(float64(key.YS)))
	n.ObjectAdd("level", BundleInt(int(key.Level)))
	n.ObjectAdd("scale", BundleFloat(float64(key.Scale)))
	n.ObjectAdd("sigma", BundleFloat(float64(key.Sigma)))
	n.ObjectAdd("score", BundleFloat(float64(key.Score)))
	n.ObjectAdd("ori", BundleFloat(float64(key.Ori)))
	n.ObjectAdd("id", BundleInt(int(key.ID)))
	return n
}

// BundleKeypointArray returns an array node of keypoint objects.
func BundleKeypointArray(keys []nexus.Keypoint) *Node {
	n := NewArray()
	for i := range keys {
		n.AddChild(BundleKeypoint(&keys[i]))
	}
	return n
}

// UnbundleBool extracts a boolean from a true/false node.
func UnbundleBool(n *Node) (bool, error) {
	switch {
	case n.Is(True):
		return true, nil
	case n.Is(False):
		return false, nil
	}
	return false, fmt.Errorf("jsontree: expecting a boolean node, have %v", n.Type)
}

// UnbundleInt extracts an integer from a number node.
func UnbundleInt(n *Node) (int, error) {
	if !n.IsA(Number) {
		return 0, fmt.Errorf("jsontree: expecting a number node, have %v", n.Type)
	}
	v, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("jsontree: parsing number %q: %w", n.Text, err)
	}
	return int(v), nil
}

// UnbundleFloat extracts a float from a number node.
func UnbundleFloat(n *Node) (float64, error) {
	if !n.IsA(Number) {
		return 0, fmt.Errorf("jsontree: expecting a number node, have %v", n.Type)
	}
	v, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("jsontree: parsing number %q: %w", n.Text, err)
	}
	return v, nil
}

// UnbundleString extracts the text of a string node.
func UnbundleString(n *Node) (string, error) {
	if !n.Is(String) {
		return "", fmt.Errorf("jsontree: expecting a string node, have %v", n.Type)
	}
	return n.Text, nil
}

// UnbundleIntArray extracts a slice of integers from an array of number
// nodes.
func UnbundleIntArray(n *Node) ([]int, error) {
	if !n.Is(Array) {
		return nil, fmt.Errorf("jsontree: expecting an array node, have %v", n.Type)
	}
	xs := make([]int, 0, len(n.Children))
	for _, child := range n.Children {
		v, err := UnbundleInt(child)
		if err != nil {
			return nil, err
		}
		xs = append(xs, v)
	}
	return xs, nil
}

// UnbundleFloatArray extracts a slice of floats from an array of number
// nodes.
func UnbundleFloatArray(n *Node) ([]float64, error) {
	if !n.Is(Array) {
		return nil, fmt.Errorf("jsontree: expecting an array node, have %v", n.Type)
	}
	xs := make([]float64, 0, len(n.Children))
	for _, child := range n.Children {
		v, err := UnbundleFloat(child)
		if err != nil {
			return nil, err
		}
		xs = append(xs, v)
	}
	return xs, nil
}

// UnbundleStringArray extracts a slice of strings from an array of
// string nodes.
func UnbundleStringArray(n *Node) ([]string, error) {
	if !n.Is(Array) {
		return nil, fmt.Errorf("jsontree: expecting an array node, have %v", n.Type)
	}
	xs := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		s, err := UnbundleString(child)
		if err != nil {
			return nil, err
		}
		xs = append(xs, s)
	}
	return xs, nil
}

// UnbundleKeypoint extracts a keypoint from an object node produced by
// BundleKeypoint.
func UnbundleKeypoint(n *Node) (nexus.Keypoint, error) {
	var key nexus.Keypoint
	if !n.Is(Object) {
		return key, fmt.Errorf("jsontree: expecting a keypoint object, have %v", n.Type)
	}

	intField := func(name string, dst *int32) error {
		value, err := n.ObjectFGet(name, Number)
		if err != nil {
			return err
		}
		v, err := UnbundleInt(value)
		if err != nil {
			return err
		}
		*dst = int32(v)
		return nil
	}
	floatField := func(name string, dst *float32) error {
		value, err := n.ObjectFGet(name, Number)
		if err != nil {
			return err
		}
		v, err := UnbundleFloat(value)
		if err != nil {
			return err
		}
		*dst = float32(v)
		return nil
	}

	if err := intField("x", &key.X); err != nil {
		return key, err
	}
	if err := intField("y", &key.Y); err != nil {
		return key, err
	}
	if err := floatField("xs", &key.XS); err != nil {
		return key, err
	}
	if err := floatField("ys", &key.YS); err != nil {
		return key, err
	}
	if err := intField("level", &key.Level); err != nil {
		return key, err
	}
	if err := floatField("scale", &key.Scale); err != nil {
		return key, err
	}
	if err := floatField("sigma", &key.Sigma); err != nil {
		return key, err
	}
	if err := floatField("score", &key.Score); err != nil {
		return key, err
	}
	if err := floatField("ori", &key.Ori); err != nil {
		return key, err
	}

	idNode, err := n.ObjectFGet("id", Number)
	if err != nil {
		return key, err
	}
	id, err := UnbundleInt(idNode)
	if err != nil {
		return key, err
	}
	key.ID = uint64(id)

	return key, nil
}

// UnbundleKeypointArray extracts keypoints from an array of keypoint
// objects.
func UnbundleKeypointArray(n *Node) ([]nexus.Keypoint, error) {
	if !n.Is(Array) {
		return nil, fmt.Errorf("jsontree: expecting an array node, have %v", n.Type)
	}
	keys := make([]nexus.Keypoint, 0, len(n.Children))
	for _, child := range n.Children {
		key, err := UnbundleKeypoint(child)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
