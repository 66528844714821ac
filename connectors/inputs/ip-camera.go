package inputs

import (
	"fmt"

	"github.com/cognitedata/olympus-camctl/drivers/camera/olympus"
	log "github.com/sirupsen/logrus"
)

// SessionConstructor connects to a camera and returns a ready session.
type SessionConstructor func(cfg olympus.Config) (*olympus.Session, error)

var sessionCon = map[string]SessionConstructor{
	"olympus": olympus.Connect,
}

// IpCamera owns the session of one camera. A reconnect replaces the session
// as a whole; a failed reconnect leaves the camera disconnected.
type IpCamera struct {
	model   string
	config  olympus.Config
	connect SessionConstructor
	session *olympus.Session
}

func NewIpCamera(model string, config olympus.Config) (*IpCamera, error) {
	connect, ok := sessionCon[model]
	if !ok {
		return nil, fmt.Errorf("unknown camera model %q", model)
	}
	return &IpCamera{model: model, config: config, connect: connect}, nil
}

// Connect opens a session unless one is already open.
func (cam *IpCamera) Connect() (*olympus.Session, error) {
	if cam.session != nil {
		return cam.session, nil
	}
	return cam.Reconnect()
}

// Reconnect discards the current session and discovers the camera again.
func (cam *IpCamera) Reconnect() (*olympus.Session, error) {
	cam.session = nil
	session, err := cam.connect(cam.config)
	if err != nil {
		log.Errorf("Failed to connect %s camera: %v", cam.model, err)
		return nil, err
	}
	cam.session = session
	return session, nil
}

// Session returns the open session, nil when disconnected.
func (cam *IpCamera) Session() *olympus.Session {
	return cam.session
}

func (cam *IpCamera) Disconnect() {
	cam.session = nil
}
