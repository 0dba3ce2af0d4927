// Package aggregates defines the write boundaries of the production portal.
//
// Contracts here carry no persistence or transport details. Each write method is one
// atomic unit in which every invariant of the aggregate is enforced.
package aggregates
