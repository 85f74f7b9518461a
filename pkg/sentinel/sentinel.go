package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: uniqueness constraint violated (e.g. duplicate vote)
// - ErrAlreadyViewed: disclosure already consumed, row is sealed
// - ErrExpired: token past its expiry
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyViewed = errors.New("already viewed")
	ErrExpired       = errors.New("expired")
)
