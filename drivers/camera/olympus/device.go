package olympus

import (
	"time"

	"github.com/cognitedata/olympus-camctl/pkg/xmltree"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	cmdGetCamInfo        = "get_caminfo"
	cmdGetCamProp        = "get_camprop"
	cmdSwitchMode        = "switch_cammode"
	cmdSetUTCTimeDiff    = "set_utctimediff"
	cmdGetUnusedCapacity = "get_unusedcapacity"
)

// Camera operating modes accepted by switch_cammode.
const (
	ModeRec     = "rec"
	ModePlay    = "play"
	ModeShutter = "shutter"
)

const (
	utcTimeLayout = "20060102T150405"
	utcDiffLayout = "-0700"
)

// CameraInfo is the typed form of the get_caminfo reply.
type CameraInfo struct {
	Model string                 `mapstructure:"model"`
	Other map[string]interface{} `mapstructure:",remain"`
}

// infoGroup is the get_caminfo mapping that carries the model. Nested
// elements in the reply produce further groups, which are skipped.
func (s *Session) infoGroup() *xmltree.Group {
	g, _ := s.cameraInfo.Find("model")
	return g
}

func (s *Session) Info() (CameraInfo, error) {
	var info CameraInfo
	if err := mapstructure.Decode(s.infoGroup().Map(), &info); err != nil {
		return info, errors.Wrap(err, "decode camera info")
	}
	return info, nil
}

// Model returns the camera model name, or "" when the camera did not report one.
func (s *Session) Model() string {
	model, _ := s.infoGroup().Get("model")
	return model
}

// Mode returns the last mode set through this session, "" when unknown.
func (s *Session) Mode() string {
	return s.mode
}

// WithMode switches the camera to mode, runs fn and switches back to the mode
// the session was in before, or to play mode when that is unknown. The prior
// mode is restored on every exit path, including when fn fails.
func (s *Session) WithMode(mode string, fn func() error) (err error) {
	prior := s.mode
	if prior == "" {
		prior = ModePlay
	}
	if _, err := s.SendCommand(cmdSwitchMode, Param("mode", mode)); err != nil {
		return err
	}
	defer func() {
		if _, rerr := s.SendCommand(cmdSwitchMode, Param("mode", prior)); rerr != nil {
			if err == nil {
				err = rerr
				return
			}
			log.Warnf("Failed to switch camera back to %s mode: %v", prior, rerr)
		}
	}()
	return fn()
}

// SetClock sets the camera clock to the current time.
func (s *Session) SetClock() error {
	return s.SetClockAt(time.Now())
}

// SetClockAt sends t as UTC time together with the offset of t's location.
func (s *Session) SetClockAt(t time.Time) error {
	if _, err := s.SendCommand(cmdSwitchMode, Param("mode", ModePlay)); err != nil {
		return err
	}
	_, err := s.SendCommand(cmdSetUTCTimeDiff,
		Param("utctime", t.UTC().Format(utcTimeLayout)),
		Param("diff", t.Format(utcDiffLayout)))
	return err
}

// FreeCapacity returns the unused capacity of the memory card as reported by the camera.
func (s *Session) FreeCapacity() (string, error) {
	v, err := s.Query(cmdGetUnusedCapacity)
	if err != nil {
		return "", err
	}
	unused, ok := v.Get("unused")
	if !ok {
		return "", errors.Errorf("%s: reply has no 'unused' entry", cmdGetUnusedCapacity)
	}
	return unused, nil
}
