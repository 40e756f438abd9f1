// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes using Go 1.22+ method patterns.

Voting-station routes (no role required; the station client is the trusted
path to the voter):

	GET  /election/phase
	POST /voters/validate
	GET  /voters/{voterId}/ballot-options
	POST /ballots

Results and administration routes pass middleware.WithPermission against
the role named in the X-Role header before touching storage.
*/
package router
