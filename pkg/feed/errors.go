package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedConsumed is returned when the posts of a feed are iterated twice.
	ErrFeedConsumed = errors.New("feed already consumed")
	// ErrUnknownFormat is returned for a format name nothing registered.
	ErrUnknownFormat = errors.New("unknown feed format")
)

// BuildError reports a page URL that could not be constructed.
type BuildError struct {
	Base string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build url from '%s': %v", e.Base, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// FetchError reports a page that could not be retrieved.
type FetchError struct {
	URL string
	// Status is the HTTP status code, 0 when the request never got a response.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch '%s': status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch '%s': %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RejectedLinkError reports a next page link the feed was not allowed to
// follow.
type RejectedLinkError struct {
	URL string
	Err error
}

func (e *RejectedLinkError) Error() string {
	return fmt.Sprintf("follow '%s': %v", e.URL, e.Err)
}

func (e *RejectedLinkError) Unwrap() error {
	return e.Err
}

// InvalidMetadataError reports a payload whose top level structure could not
// be parsed. It is distinct from a valid payload that lists zero posts.
type InvalidMetadataError struct {
	URL    string
	Reason string
	Err    error
}

// Invalid is a shorthand for format implementations.
func Invalid(url, reason string, err error) *InvalidMetadataError {
	return &InvalidMetadataError{URL: url, Reason: reason, Err: err}
}

func (e *InvalidMetadataError) Error() string {
	msg := fmt.Sprintf("invalid feed '%s': %s", e.URL, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidMetadataError) Unwrap() error {
	return e.Err
}

// PostError reports a single post that could not be built.
type PostError struct {
	Index  int
	Reason string
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post %d: %s", e.Index, e.Reason)
}
