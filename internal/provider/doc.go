// Package provider defines the records and resolver contracts for the two
// content sources: a music catalog, whose tracks are found on the video
// platform by search, and the video platform itself.
//
// Concrete adapters live in the spotify and youtube sub-packages. The
// queue only depends on the interfaces declared here, so tests can supply
// fakes.
package provider
