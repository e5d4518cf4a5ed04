package device

import "errors"

var (
	// ErrClosed is returned by any VirtualDevice method called after Close.
	ErrClosed = errors.New("device: virtual device is closed")

	// ErrUnsupportedButton is returned for a mouse button event code this
	// device has no uinput binding for (only left/middle/right are wired;
	// side/extra buttons have no press/release call in the uinput library
	// this client uses).
	ErrUnsupportedButton = errors.New("device: unsupported mouse button")
)
