package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrStorage indicates local persistence failed
	ErrStorage = errors.New("local storage failed")

	// ErrNetwork indicates the museum server is unreachable
	ErrNetwork = errors.New("museum server is unreachable")

	// ErrServer indicates the museum server answered with a non-2xx status
	ErrServer = errors.New("museum server returned an error")

	// ErrUnauthenticated indicates a remote call was attempted without a session
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates the server rejected the bearer credential
	ErrSessionExpired = errors.New("session expired")

	// ErrSyncDisabled indicates a sync was requested while sync is off
	ErrSyncDisabled = errors.New("favorites sync is disabled")

	// ErrInvalidCredentials indicates login or registration was refused
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrArtworkNotFound indicates the requested artwork does not exist
	ErrArtworkNotFound = errors.New("artwork not found")
)
