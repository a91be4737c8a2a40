//go:build !unix

package main

func mlock(b []byte) error {
	return ErrPinUnsupported
}

func munlock(b []byte) error {
	return nil
}
