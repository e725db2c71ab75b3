package controller

// withFilter installs f on sock for the duration of body and puts the
// previous filter back on every exit path, panics included.
func withFilter(sock Socket, f Filter, body func() error) error {
	old, err := sock.GetFilter()
	if err != nil {
		return &SocketOptionError{Op: "get", Err: err}
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return &SocketOptionError{Op: "encode", Err: err}
	}
	if err := sock.SetFilter(b); err != nil {
		return &SocketOptionError{Op: "set", Err: err}
	}

	returned := false
	defer func() {
		if !returned {
			_ = sock.SetFilter(old)
		}
	}()
	err = body()
	returned = true

	if rerr := sock.SetFilter(old); rerr != nil {
		restoreErr := &SocketOptionError{Op: "restore", Err: rerr}
		if err != nil {
			return &FilterRestoreError{Err: err, RestoreErr: restoreErr}
		}
		return restoreErr
	}
	return err
}
