package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	RemoteStatus int    `json:"remote_status,omitempty"`
	RemoteBody   string `json:"remote_body,omitempty"`
}

// RemoteFailure annotates a non-2xx response from the storefront backend.
type RemoteFailure struct {
	Status int
	Body   string
}

func (r *RemoteFailure) Error() string {
	return fmt.Sprintf("status %d: %s", r.Status, r.Body)
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var remote *RemoteFailure
	if errors.As(err, &remote) {
		d.RemoteStatus = remote.Status
		d.RemoteBody = remote.Body
	}

	return d
}
