// Package buffer owns the ordered trade tape.
//
// Timestamps are non-decreasing at all observable points. Mutation happens
// only through Append, MergeHistorical, and Trim; live and historical writers
// share one instance and the boundary-merge rule keeps them consistent.
package buffer
