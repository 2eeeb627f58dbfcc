// Package render draws planned coverage paths.
//
// Two outputs are produced from a coverage.Result: static PNG plots built
// with gonum/plot (the world-frame path over its boundary, and the
// sweep-frame grid as a heat map), and an interactive go-echarts HTML page.
// All files are written through an fsutil.FileSystem.
package render
