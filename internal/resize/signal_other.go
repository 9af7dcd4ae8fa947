//go:build !unix

package resize

import "os"

func notifyResize(chan<- os.Signal) {}
