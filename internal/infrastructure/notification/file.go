// Package notification implements the out-of-band delivery channel used for
// OTP codes and reset passwords.
package notification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSender appends payloads to <dir>/<address>.txt. It is the local stand-in
// for a real mail sender; tests and development read the files back.
type FileSender struct {
	Dir string
}

func NewFileSender(dir string) *FileSender {
	return &FileSender{Dir: dir}
}

func (s *FileSender) Deliver(ctx context.Context, address, subject, payload string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, address+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintf(f, "%s\n", payload)
	return err
}
