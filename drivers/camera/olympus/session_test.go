package olympus

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cognitedata/olympus-camctl/pkg/mockcam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectMock(t *testing.T, cam *mockcam.Camera) *Session {
	t.Helper()
	srv := httptest.NewServer(cam)
	t.Cleanup(srv.Close)
	s, err := Connect(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return s
}

func TestConnectCollectsMetadata(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)

	assert.Equal(t, "E-M10MarkII", s.Model())
	assert.Equal(t, map[string]string{"version": "4.20"}, s.Versions())
	assert.Equal(t, []string{"gps", "remote", "web"}, s.SupportedFeatures())
	assert.True(t, s.Supports("remote"))
	assert.False(t, s.Supports("bluetooth"))
	assert.Contains(t, s.Commands(), "get_camprop")

	assert.Equal(t, []string{"takemode", "isospeedvalue"}, s.Properties())
	values, ok := s.PropertyValues("takemode")
	require.True(t, ok)
	assert.Equal(t, []string{"iAuto", "P", "A", "S", "M", "ART"}, values)
	_, ok = s.PropertyValues("batteryLevel")
	assert.False(t, ok)
	_, ok = s.PropertyValues("artfilter")
	assert.False(t, ok)
}

func TestConnectBracketsPropertyQueryWithModeSwitch(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)

	assert.Equal(t, []string{
		"get_commandlist",
		"get_caminfo",
		"switch_cammode",
		"get_camprop",
		"switch_cammode",
	}, cam.Commands())
	reqs := cam.Requests()
	assert.Equal(t, "mode=rec", reqs[2].RawQuery)
	assert.Equal(t, "com=desc&propname=desclist", reqs[3].RawQuery)
	assert.Equal(t, "mode=play", reqs[4].RawQuery)
	assert.Equal(t, "play", cam.Mode())
	assert.Equal(t, ModePlay, s.Mode())
}

func TestConnectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	s, err := Connect(Config{BaseURL: addr, Timeout: time.Second})
	assert.Nil(t, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
	var cerr *ConnectivityError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, addr+"/", cerr.Address)
}

func TestConnectDiscoveryResultErrorIsNotConnectivity(t *testing.T) {
	cam := mockcam.New()
	cam.SetReply("get_commandlist", mockcam.Reply{Status: http.StatusServiceUnavailable, Body: "busy"})
	srv := httptest.NewServer(cam)
	defer srv.Close()

	_, err := Connect(Config{BaseURL: srv.URL})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnreachable))
	var rerr *ResultError
	assert.True(t, errors.As(err, &rerr))
}

func TestConnectSkipsPropertiesWhenNotDescribed(t *testing.T) {
	cam := mockcam.New()
	cam.SetReply("get_commandlist", mockcam.OK(`<oishare><cgi name="get_caminfo"><http_method type="get"/></cgi></oishare>`))
	s := connectMock(t, cam)

	assert.Empty(t, s.Properties())
	assert.Equal(t, []string{"get_commandlist", "get_caminfo"}, cam.Commands())
}

func TestConnectRestoresModeWhenPropertyQueryFails(t *testing.T) {
	cam := mockcam.New()
	cam.SetReply("get_camprop", mockcam.Reply{Status: 520, ContentType: mockcam.XMLContentType, Body: `<error><code>1</code></error>`})
	srv := httptest.NewServer(cam)
	defer srv.Close()

	_, err := Connect(Config{BaseURL: srv.URL})
	var rerr *ResultError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "code=1", rerr.Message)

	cmds := cam.Commands()
	assert.Equal(t, "switch_cammode", cmds[len(cmds)-1])
	assert.Equal(t, "play", cam.Mode())
}

func TestWithModeRestoresPriorMode(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)
	_, err := s.SendCommand("switch_cammode", Param("mode", "shutter"))
	require.NoError(t, err)
	cam.Reset()

	boom := errors.New("boom")
	err = s.WithMode(ModeRec, func() error { return boom })
	assert.Same(t, boom, err)
	assert.Equal(t, "shutter", cam.Mode())
	assert.Equal(t, ModeShutter, s.Mode())

	reqs := cam.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "mode=rec", reqs[0].RawQuery)
	assert.Equal(t, "mode=shutter", reqs[1].RawQuery)
}

func TestWithModeReportsRestoreFailure(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)

	err := s.WithMode(ModeRec, func() error {
		cam.SetReply("switch_cammode", mockcam.Reply{Status: http.StatusServiceUnavailable})
		return nil
	})
	var rerr *ResultError
	assert.True(t, errors.As(err, &rerr))
}

func TestSessionRemainsUsableAfterErrors(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)

	_, err := s.Query("get_caminfo", Param("x", "1"))
	assert.True(t, errors.Is(err, ErrUnsupportedParameter))

	cam.SetReply("get_connectmode", mockcam.Reply{Status: http.StatusInternalServerError})
	_, err = s.Query("get_connectmode")
	var rerr *ResultError
	assert.True(t, errors.As(err, &rerr))

	capacity, err := s.FreeCapacity()
	require.NoError(t, err)
	assert.Equal(t, "15521792", capacity)
}

func TestQueryIsIdempotent(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)

	first, err := s.Query("get_caminfo")
	require.NoError(t, err)
	second, err := s.Query("get_caminfo")
	require.NoError(t, err)

	j1, _ := json.Marshal(first)
	j2, _ := json.Marshal(second)
	assert.Equal(t, string(j1), string(j2))
}

func TestSetClockAt(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)
	cam.Reset()

	tokyo := time.FixedZone("JST", 9*60*60)
	require.NoError(t, s.SetClockAt(time.Date(2024, 3, 5, 21, 4, 5, 0, tokyo)))

	reqs := cam.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "mode=play", reqs[0].RawQuery)
	assert.Equal(t, "set_utctimediff", reqs[1].Command)
	assert.Equal(t, "utctime=20240305T120405&diff=%2B0900", reqs[1].RawQuery)
}

func TestFreeCapacityMissingEntry(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)
	cam.SetReply("get_unusedcapacity", mockcam.OK(`<unusedcapacity><free>1</free></unusedcapacity>`))

	_, err := s.FreeCapacity()
	assert.Error(t, err)
}

func TestInfoDecodesCameraInfo(t *testing.T) {
	cam := mockcam.New()
	cam.SetReply("get_caminfo", mockcam.OK(`<caminfo><model>E-M1</model><serial>BH12</serial></caminfo>`))
	s := connectMock(t, cam)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, "E-M1", info.Model)
	assert.Equal(t, map[string]interface{}{"serial": "BH12"}, info.Other)
	g, ok := s.CameraInfo().Group()
	require.True(t, ok)
	assert.Equal(t, []string{"model", "serial"}, g.Keys())
}

func TestConnectAcceptsNestedCameraInfo(t *testing.T) {
	cam := mockcam.New()
	cam.SetReply("get_caminfo", mockcam.OK(`<caminfo><model>E-M1</model><lens><name>12-40</name></lens></caminfo>`))
	s := connectMock(t, cam)

	assert.Equal(t, "E-M1", s.Model())
	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, "E-M1", info.Model)
	assert.True(t, s.CameraInfo().IsList())
	assert.Len(t, s.CameraInfo().Groups(), 2)
}

func TestConnectWithoutXMLCameraInfo(t *testing.T) {
	cam := mockcam.New()
	cam.SetReply("get_caminfo", mockcam.Reply{Status: http.StatusOK, ContentType: "text/plain", Body: "E-M1"})
	s := connectMock(t, cam)

	assert.Nil(t, s.CameraInfo())
	assert.Equal(t, "", s.Model())
}

func TestReturnedMetadataIsDetached(t *testing.T) {
	cam := mockcam.New()
	s := connectMock(t, cam)

	g, ok := s.CameraInfo().Group()
	require.True(t, ok)
	g.Set("model", "E-P7")
	assert.Equal(t, "E-M10MarkII", s.Model())

	descr, ok := s.Schema().Lookup("switch_cammode")
	require.True(t, ok)
	names := descr.Args.Tokens()
	names[0] = Literal("speed")
	_, err := s.SendCommand("switch_cammode", Param("speed", "1"))
	assert.True(t, errors.Is(err, ErrUnsupportedParameter))
	_, err = s.SendCommand("switch_cammode", Param("mode", "standby"))
	assert.True(t, errors.Is(err, ErrUnsupportedValue))

	s.Properties()[0] = "changed"
	assert.Equal(t, "takemode", s.Properties()[0])
	s.Versions()["version"] = "9.99"
	assert.Equal(t, "4.20", s.Versions()["version"])
}

func TestConnectRejectsMalformedAddress(t *testing.T) {
	for _, addr := range []string{"http://[::1", "192.168.0.10", "ftp://192.168.0.10/"} {
		s, err := Connect(Config{BaseURL: addr, Timeout: time.Second})
		assert.Nil(t, s, addr)
		require.Error(t, err, addr)
		assert.False(t, errors.Is(err, ErrUnreachable), addr)
		assert.Contains(t, err.Error(), "invalid camera address", addr)
	}
}
