package repository

import (
	stderrors "errors"

	"github.com/jwalitptl/careconnect-api/pkg/errors"
)

// Upstream reports a datastore connectivity failure as UpstreamUnavailable
// and returns any other error unchanged. Repositories already name the
// failed operation, so callers do not wrap again.
func Upstream(err error) error {
	if err != nil && stderrors.Is(err, ErrUnavailable) {
		return errors.UpstreamUnavailable("datastore", err)
	}
	return err
}

// NotFoundOr maps ErrNotFound to NotFound(resource), then applies Upstream.
func NotFoundOr(resource string, err error) error {
	if stderrors.Is(err, ErrNotFound) {
		return errors.NotFound(resource, err)
	}
	return Upstream(err)
}
