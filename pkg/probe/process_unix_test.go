//go:build unix

package probe

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// requireReleased fails the test if the browser process is still alive.
func requireReleased(t *testing.T, pid int) {
	t.Helper()

	require.NotZero(t, pid, "browser pid was not recorded")
	require.Eventually(t, func() bool {
		return errors.Is(syscall.Kill(pid, 0), syscall.ESRCH)
	}, 10*time.Second, 100*time.Millisecond, "browser pid %d still alive", pid)
}
