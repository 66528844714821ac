package olympus

import (
	"net/url"
	"sort"
	"strings"

	"github.com/cognitedata/olympus-camctl/pkg/xmltree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Session is a connected camera. All metadata is collected by Connect and is
// read-only afterwards. Calls must not be issued concurrently: the camera
// keeps a single operating mode that commands switch back and forth.
type Session struct {
	transport *Transport
	schema    *Schema

	versions   map[string]string
	supported  map[string]struct{}
	cameraInfo *xmltree.Value
	propNames  []string
	propValues map[string][]string

	mode string // last mode set through switch_cammode, empty when unknown
}

// Connect discovers the camera's command set and collects its metadata.
// It returns a *ConnectivityError when the camera cannot be reached at all.
func Connect(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := checkBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	transport := NewTransport(cfg, NewSchema())

	log.Infof("Discovering commands of camera at %s", cfg.BaseURL)
	resp, err := transport.Dispatch(CommandList, nil)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, &ConnectivityError{Address: cfg.BaseURL, Err: err}
		}
		return nil, errors.Wrap(err, "discover commands")
	}
	disc, err := ParseCommandList(resp.Body)
	if err != nil {
		return nil, err
	}
	transport.schema = disc.Schema

	s := &Session{
		transport:  transport,
		schema:     disc.Schema,
		versions:   disc.Versions,
		supported:  disc.Supported,
		propValues: map[string][]string{},
	}
	log.Debugf("Camera advertised %d commands", s.schema.Len())

	info, err := s.Query(cmdGetCamInfo)
	if err != nil {
		return nil, errors.Wrap(err, "read camera info")
	}
	s.cameraInfo = info

	if err := s.loadPropertyValues(); err != nil {
		return nil, errors.Wrap(err, "read property descriptions")
	}
	log.Infof("Connected to camera %s", s.Model())
	return s, nil
}

func checkBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(err, "invalid camera address")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("invalid camera address %q: expected http://host/", raw)
	}
	return nil
}

// loadPropertyValues keeps the enumerations of all read-write properties.
// Property descriptions are only served in record mode.
func (s *Session) loadPropertyValues() error {
	_, hasProps := s.schema.Lookup(cmdGetCamProp)
	_, hasModes := s.schema.Lookup(cmdSwitchMode)
	if !hasProps || !hasModes {
		log.Debug("Camera does not describe its properties, skipping enumeration")
		return nil
	}
	return s.WithMode(ModeRec, func() error {
		desc, err := s.Query(cmdGetCamProp, Param("com", "desc"), Param("propname", "desclist"))
		if err != nil {
			return err
		}
		for _, prop := range desc.Groups() {
			if attr, _ := prop.Get("attribute"); attr != "getset" {
				continue
			}
			enum, ok := prop.Get("enum")
			if !ok {
				continue
			}
			name, ok := prop.Get("propname")
			if !ok {
				continue
			}
			if _, seen := s.propValues[name]; !seen {
				s.propNames = append(s.propNames, name)
			}
			s.propValues[name] = strings.Fields(enum)
		}
		return nil
	})
}

// SendCommand validates and sends one command and returns the raw response.
func (s *Session) SendCommand(command string, args ...Arg) (*Response, error) {
	resp, err := s.transport.Dispatch(command, args)
	if err != nil {
		return nil, err
	}
	if command == cmdSwitchMode {
		if mode, ok := Args(args).Get("mode"); ok {
			s.mode = argText(mode)
		}
	}
	return resp, nil
}

// Query sends a command and normalizes its XML reply. The value is nil when
// the camera did not answer with XML.
func (s *Session) Query(command string, args ...Arg) (*xmltree.Value, error) {
	resp, err := s.SendCommand(command, args...)
	if err != nil {
		return nil, err
	}
	v, err := resp.XML()
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s reply", command)
	}
	return v, nil
}

func (s *Session) Schema() *Schema {
	return s.schema
}

func (s *Session) Commands() []string {
	return s.schema.Commands()
}

func (s *Session) BaseURL() string {
	return s.transport.BaseURL()
}

func (s *Session) Versions() map[string]string {
	out := make(map[string]string, len(s.versions))
	for k, v := range s.versions {
		out[k] = v
	}
	return out
}

func (s *Session) SupportedFeatures() []string {
	features := make([]string, 0, len(s.supported))
	for f := range s.supported {
		features = append(features, f)
	}
	sort.Strings(features)
	return features
}

func (s *Session) Supports(feature string) bool {
	_, ok := s.supported[feature]
	return ok
}

// CameraInfo returns a copy of the normalized get_caminfo reply, nil when the
// camera did not answer with XML.
func (s *Session) CameraInfo() *xmltree.Value {
	return s.cameraInfo.Clone()
}

// Properties returns the names of settable properties with an enumeration.
func (s *Session) Properties() []string {
	return append([]string(nil), s.propNames...)
}

// PropertyValues returns the accepted values of a settable property, in the
// order the camera listed them.
func (s *Session) PropertyValues(name string) ([]string, bool) {
	values, ok := s.propValues[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), values...), true
}
