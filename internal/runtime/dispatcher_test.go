package runtime

import (
	"net"
	"os"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates service context with default values", func(t *testing.T) {
		t.Parallel()

		serviceCtx := New()

		require.NotNil(t, serviceCtx)
		require.NotNil(t, serviceCtx.shutdownChannel)
		require.Nil(t, serviceCtx.deps)
		require.Nil(t, serviceCtx.serverReady)
	})

	t.Run("creates service context with options", func(t *testing.T) {
		t.Parallel()

		ch := make(chan os.Signal, 1)
		serviceCtx := New(
			WithServiceTermination(ch),
			WithWaitingForServer(),
		)

		require.NotNil(t, serviceCtx)
		require.Equal(t, ch, serviceCtx.shutdownChannel)
		require.NotNil(t, serviceCtx.serverReady)
	})
}

func TestRun_GracefulShutdownOnSignal(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("HTTP_SERVER_PORT", "0")
	t.Setenv("ADMIN_HTTP_SERVER_PORT", "0")

	ch := make(chan os.Signal, 1)
	srv := New(WithServiceTermination(ch), WithWaitingForServer())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run()
	}()

	srv.WaitForServer()

	ch <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not shut down")
	}
}

func TestRun_PortInUse(t *testing.T) {
	setGatewayEnv(t)

	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = occupied.Close() })

	port := occupied.Addr().(*net.TCPAddr).Port
	t.Setenv("HTTP_SERVER_PORT", strconv.Itoa(port))
	t.Setenv("ADMIN_HTTP_SERVER_PORT", "0")

	err = New().Run()
	require.ErrorContains(t, err, "listening for the gateway server")
}
