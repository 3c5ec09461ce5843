// Package ir provides the abstract term representation exchanged between the
// term database and its collaborators (parsers, loaders, renderers).
//
// This package contains type definitions and canonical encodings only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Terms are plain values; identity lives in the term database, not here
//   - Numbers keep their source text (no float conversion)
//   - Variable names are stored without the leading ':' sigil
//   - Canonical JSON (RFC 8785 subset, NFC strings) is the ONLY encoding
//     used for content digests
package ir
