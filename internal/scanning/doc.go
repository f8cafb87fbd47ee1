// Package scanning implements the scuttle scanning engine: the Scanner
// strategy abstraction, its three concrete probing techniques (TCP
// connect, SYN stealth, UDP), and the concurrent job orchestrator that
// drives a strategy across a port list under a concurrency cap and an
// optional rate limit.
//
// Strategies never fail outward while probing: every internal error is
// mapped to a port status so one unreachable port cannot abort a job.
// The only fatal errors are raised at scanner construction, before any
// port is probed.
package scanning
