package utils

import (
	"log"
	"os"
	"os/signal"
	"syscall"
)

// WaitTerminate returns a channel notified on SIGINT, SIGTERM and SIGQUIT.
func WaitTerminate() <-chan os.Signal {
	c := make(chan os.Signal, 3)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	return c
}

// RedirectFile points the from descriptor at to.
func RedirectFile(from, to *os.File) error {
	return syscall.Dup2(int(to.Fd()), int(from.Fd()))
}

// RedirectLog appends log output and stderr to the file at path.
// The returned file must be closed by the caller.
func RedirectLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	if err := RedirectFile(os.Stderr, f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
