// Package signal ranks recent congress trades against each symbol's
// historical trade-size norm.
//
// A baseline is the median disclosed amount ceiling per symbol over a
// trailing window. Candidates within the recent window score as the
// multiple of their amount over that median and qualify once the
// multiple, the amount, and the baseline sample count clear their
// thresholds. Only the congress tape is scored: insider rows carry
// share counts in raw attributes rather than dollar bounds, so no
// amount baseline exists for them.
package signal
