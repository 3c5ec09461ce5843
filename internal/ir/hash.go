package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainTerm    = "trl/term/v1"
	DomainRule    = "trl/rule/v1"
	DomainProgram = "trl/program/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TermDigest computes the content digest of an AST term.
// Structurally equal terms have equal digests regardless of which database
// (if any) they were read from, so digests are stable across runs.
func TermDigest(t Term) (string, error) {
	v, err := TermValue(t)
	if err != nil {
		return "", fmt.Errorf("TermDigest: %w", err)
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("TermDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTerm, canonical), nil
}

// RuleDigest computes the content digest of a rewrite rule.
func RuleDigest(r RewriteRule) (string, error) {
	match, err := TermValue(r.Match)
	if err != nil {
		return "", fmt.Errorf("RuleDigest: match: %w", err)
	}
	sub, err := TermValue(r.Substitute)
	if err != nil {
		return "", fmt.Errorf("RuleDigest: substitute: %w", err)
	}
	canonical, err := MarshalCanonical(IRObject{"match": match, "substitute": sub})
	if err != nil {
		return "", fmt.Errorf("RuleDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRule, canonical), nil
}

// ProgramHash computes the content digest of a whole program.
// Used to correlate trace runs with the program that produced them.
func ProgramHash(list StatementList) (string, error) {
	v, err := ProgramValue(list)
	if err != nil {
		return "", fmt.Errorf("ProgramHash: %w", err)
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// MustTermDigest is like TermDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTermDigest(t Term) string {
	d, err := TermDigest(t)
	if err != nil {
		panic(err)
	}
	return d
}
