package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// Lock keeps a localhost port bound for the lifetime of the process; a
// second instance of the app fails to bind it and exits early.
type Lock struct {
	listener net.Listener
}

// AcquireLock binds the deterministic port derived from appName.
func AcquireLock(appName string) (*Lock, error) {
	address := fmt.Sprintf("127.0.0.1:%d", lockPort(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &Lock{listener: listener}, nil
}

// Release frees the lock.
func (lock *Lock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	return lock.listener.Close()
}

func lockPort(appName string) int {
	const (
		minPort = 40000
		maxPort = 49999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return minPort + int(hash.Sum32()%uint32(maxPort-minPort+1))
}
