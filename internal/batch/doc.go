// Package batch computes the admitted work set for a submission and
// assembles the batch outcome report.
package batch
