package common

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

func Interrupt(cancel <-chan struct{}) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		return errors.Errorf("received signal %s", sig)
	case <-cancel:
		return errors.New("canceled")
	}
}
