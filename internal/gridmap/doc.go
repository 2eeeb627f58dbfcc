// Package gridmap owns the occupancy grid consumed by the sweep searcher.
//
// Responsibilities: polygon rasterisation, one-cell dilation, occupancy
// queries with an explicit threshold, visited marking, index to position
// conversion and read-only snapshots for rendering.
//
// Cell values: 0.0 free, 0.5 visited, 1.0 occupied. A cell is never lowered
// once raised, so obstacles stay obstacles and visited cells never become
// free again.
package gridmap
