// Package delinquency decides whether monthly enrollment fees are overdue.
//
// An Obligation is one billing period's fee for a student. Its due date is
// either stored explicitly or derived from the "YYYY-MM" period token as the
// last calendar day of that month. The Evaluator partitions a set of
// obligations into overdue and current ones against a single captured "now"
// and totals what is owed. Nothing here performs I/O; loading obligations is
// the job of an ObligationReader.
package delinquency
