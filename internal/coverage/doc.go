// Package coverage plans boustrophedon (lawnmower) coverage paths over a
// polygonal area.
//
// Responsibilities: the sweep searcher state machine, the path search driver
// and the planner facade that composes the coordinate transform, the grid
// map and the search. Planning is synchronous and keeps no state between
// calls; each call owns its grid and searcher.
//
// Dependency rule: coverage depends on geom and gridmap only. Rendering and
// persistence consume its results and live elsewhere.
package coverage
