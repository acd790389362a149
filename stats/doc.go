// Package stats computes streaming summaries of numeric columns.
//
// An Accumulator keeps exact count, sum, min, max, mean and population
// standard deviation (Welford's method) in constant memory, and estimates
// percentiles from a fixed-size reservoir sample drawn with a seeded
// generator, so repeated runs over the same input give the same answer.
package stats
