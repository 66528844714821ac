package mockcam

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestCameraRefusesRecOnlyCommandsInPlayMode(t *testing.T) {
	cam := New()
	srv := httptest.NewServer(cam)
	defer srv.Close()

	resp, body := get(t, srv.URL+"/get_camprop.cgi?com=desc&propname=desclist")
	assert.Equal(t, 520, resp.StatusCode)
	assert.Contains(t, body, "not in rec mode")

	resp, _ = get(t, srv.URL+"/switch_cammode.cgi?mode=rec")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rec", cam.Mode())

	resp, body = get(t, srv.URL+"/get_camprop.cgi?com=desc&propname=desclist")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, XMLContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "takemode")
}

func TestCameraUnknownCommand(t *testing.T) {
	cam := New()
	srv := httptest.NewServer(cam)
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/exec_pwoff.cgi")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, []string{"exec_pwoff"}, cam.Commands())

	cam.Reset()
	assert.Empty(t, cam.Requests())
}
