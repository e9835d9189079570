// Command nx is the VIRG-Nexus command-line tool. It detects keypoints,
// converts images between the supported formats, and applies affine
// warps.
//
// Usage:
//
//	nx detect [flags] <input>     detect keypoints, write JSON or binary
//	nx convert [flags] <input>    convert/resize an image
//	nx warp [flags] <input>       apply a tilt/rotation/scale warp
//	nx version                    print version information
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
