package inputs

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/cognitedata/olympus-camctl/drivers/camera/olympus"
	"github.com/cognitedata/olympus-camctl/pkg/mockcam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIpCameraUnknownModel(t *testing.T) {
	_, err := NewIpCamera("hickvision", olympus.Config{})
	assert.Error(t, err)
}

func TestIpCameraReconnectReplacesSession(t *testing.T) {
	cam := mockcam.New()
	srv := httptest.NewServer(cam)
	defer srv.Close()

	ipcam, err := NewIpCamera("olympus", olympus.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	first, err := ipcam.Connect()
	require.NoError(t, err)
	again, err := ipcam.Connect()
	require.NoError(t, err)
	assert.Same(t, first, again)

	second, err := ipcam.Reconnect()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Same(t, second, ipcam.Session())

	srv.Close()
	_, err = ipcam.Reconnect()
	assert.True(t, errors.Is(err, olympus.ErrUnreachable))
	assert.Nil(t, ipcam.Session())
}
