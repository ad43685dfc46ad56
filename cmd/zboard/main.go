// Zboard converts plain-text whiteboard mathematics to LaTeX markup.
//
// It reads notes written in an ASCII (or Unicode) notation for
// Z-style set theory and predicate logic and produces a LaTeX
// document targeting either the fuzz or the zed-csp style package.
//
// Usage:
//
//	# Convert a file, fuzz dialect, to stdout
//	zboard convert notes.zb
//
//	# Convert with the zed-csp spellings into a file
//	zboard convert notes.zb --mode zed -o notes.tex
//
//	# Re-convert automatically whenever the source changes
//	zboard convert notes.zb -o notes.tex --watch
//
//	# Show version information
//	zboard version
package main

func main() {
	Execute()
}
