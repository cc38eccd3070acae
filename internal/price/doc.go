// Package price annotates event pages with current quotes.
//
// Quotes come from a batch short-quote endpoint behind a rate limiter
// and a process-local TTL cache. Every failure degrades to omitted
// annotation fields; pricing can never fail an event query.
package price
