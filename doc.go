// Package nexus provides computer-vision primitives: a typed 2-D raster
// with pyramidal multi-scale representations, corner detectors (FAST-9,
// Harris), binary local descriptors (BRIEF), and an affine warp processor,
// together with companion lexing/parsing utilities for JSON and CSV data.
//
// The root package holds the image container and its pixel operations.
// Multi-scale representations live in the pyramid subpackage, detectors in
// detect, descriptors in brief, and warping in warp. The lexer, jsontree
// and csv subpackages build the configuration-data side of the library.
//
// Basic usage:
//
//	img, err := nexus.LoadGray("frame.pgm")
//	pyr := pyramid.NewFastBuilder(5, 0).Build(img)
//	keys := detect.NewFast().DetectPyr(pyr, 1000, pyr.NLevels())
//
// All pixel loops run on the calling goroutine; only the warp processor
// fans out across image rows internally.
package nexus
