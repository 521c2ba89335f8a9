package main

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen_BindsBoth(t *testing.T) {
	httpLis, grpcLis, err := listen("127.0.0.1:0", "127.0.0.1:0")
	require.NoError(t, err)
	defer httpLis.Close()
	defer grpcLis.Close()
	assert.NotEqual(t, httpLis.Addr().String(), grpcLis.Addr().String())
}

func TestListen_ReleasesHTTPWhenGRPCFails(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpAddr := free.Addr().String()
	require.NoError(t, free.Close())

	_, _, err = listen(httpAddr, taken.Addr().String())
	require.Error(t, err)

	// the HTTP address is free again
	again, err := net.Listen("tcp", httpAddr)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
