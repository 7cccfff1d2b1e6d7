package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnknownMarketplace is returned when a marketplace identifier is not
	// part of the supported set
	ErrUnknownMarketplace = errors.New("unknown marketplace")

	// ErrMissingCredentials is returned when a connector is invoked without
	// the API credentials it needs
	ErrMissingCredentials = errors.New("marketplace credentials not configured")

	// ErrMarketplaceAPIFailure is returned when a marketplace API request fails
	ErrMarketplaceAPIFailure = errors.New("marketplace API request failed")

	// ErrKeywordGenerationFailed is returned when the AI keyword service
	// cannot produce usable suggestions
	ErrKeywordGenerationFailed = errors.New("keyword generation failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
