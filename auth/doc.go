// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier and token generation utilities.

# Entity IDs

All rows use random UUID primary keys:

	id := auth.NewID()

# Receipt Tokens

Receipt tokens prove participation without linking to the voter's choices:

	token, err := auth.GenerateReceiptToken()

192 bits of crypto/rand entropy, URL-safe base64, no padding. Tokens are
returned to the voter once and never stored next to their ballots.

# Voter IDs

Public voter identifiers follow the VOTER##### format:

	voterID, err := auth.GenerateVoterID()

The digits are random; the voter table's unique index catches the rare
collision and registration retries.
*/
package auth
