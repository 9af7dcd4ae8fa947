//go:build unix

package resize

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

func notifyResize(ch chan<- os.Signal) {
	signal.Notify(ch, unix.SIGWINCH)
}
