package olympus

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cognitedata/olympus-camctl/pkg/xmltree"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL   = "http://192.168.0.10/"
	DefaultHost      = "192.168.0.10"
	DefaultUserAgent = "OI.Share v2"
	DefaultTimeout   = 15 * time.Second
)

const (
	xmlDeclPrefix  = "<?xml "
	xmlContentType = "text/plain;charset=utf-8"
)

// Config describes how to reach a camera. Zero fields take the defaults of
// the camera's own access point.
type Config struct {
	BaseURL   string
	Host      string // value of the Host header, some firmwares insist on it
	UserAgent string
	Timeout   time.Duration

	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Response is a completed exchange. The body has been read and closed.
type Response struct {
	StatusCode int
	Header     http.Header
	URL        string
	Body       []byte
}

func (r *Response) Text() string {
	return string(r.Body)
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// XML normalizes the body. It returns nil when the camera did not answer with XML.
func (r *Response) XML() (*xmltree.Value, error) {
	return xmltree.FromResponse(r.ContentType(), r.Body)
}

// Transport sends validated commands to the camera, one exchange per call.
type Transport struct {
	cfg    Config
	client *http.Client
	schema *Schema
}

func NewTransport(cfg Config, schema *Schema) *Transport {
	cfg = cfg.withDefaults()
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: cfg.Timeout,
		}
	}
	return &Transport{cfg: cfg, client: client, schema: schema}
}

func (t *Transport) BaseURL() string {
	return t.cfg.BaseURL
}

// Dispatch validates command and args, sends them and returns the response.
// Status codes other than 200 and 202 are returned as *ResultError.
func (t *Transport) Dispatch(command string, args Args) (*Response, error) {
	if err := t.schema.Validate(command, args); err != nil {
		return nil, err
	}
	descr, _ := t.schema.Lookup(command)
	endpoint := t.cfg.BaseURL + command + ".cgi"

	var req *http.Request
	var err error
	switch descr.Method {
	case MethodGet:
		req, err = http.NewRequest(http.MethodGet, endpoint+encodeQuery(args), nil)
		if err != nil {
			return nil, err
		}
	case MethodPost:
		raw, ok := args.Get(PostDataKey)
		if !ok {
			return nil, newRequestError(ErrMissingPostData, command, nil,
				"error in '%s' with args '%s': missing entry '%s' for method 'post'.", command, args.String(), PostDataKey)
		}
		data, ok := raw.([]byte)
		if !ok {
			return nil, newRequestError(ErrPayloadType, command, nil,
				"error in %s: data for method 'post' is of type '%T'; type '[]byte' expected.", command, raw)
		}
		rest := make(Args, 0, len(args))
		for _, arg := range args {
			if arg.Key != PostDataKey {
				rest = append(rest, arg)
			}
		}
		req, err = http.NewRequest(http.MethodPost, endpoint+encodeQuery(rest), bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(data) > len(xmlDeclPrefix) && bytes.HasPrefix(data, []byte(xmlDeclPrefix)) {
			req.Header.Set("Content-Type", xmlContentType)
		}
	default:
		return nil, errors.Errorf("command %s uses unsupported method %q", command, descr.Method)
	}
	req.Host = t.cfg.Host
	req.Header.Set("User-Agent", t.cfg.UserAgent)

	logger := log.WithFields(log.Fields{
		"command":    command,
		"method":     descr.Method,
		"request_id": uuid.NewString(),
	})
	logger.Debugf("Sending %s", req.URL.String())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read response of %s", command)
	}
	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		URL:        resp.Request.URL.String(),
		Body:       body,
	}
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		logger.Debugf("Camera answered %s", resp.Status)
		return result, nil
	}

	rerr := newResultError(result)
	logger.Warn(rerr.Error())
	return nil, rerr
}

func newResultError(r *Response) *ResultError {
	msg := strings.ReplaceAll(r.Text(), "\r\n", "")
	if v, err := r.XML(); err == nil {
		if g, ok := v.Group(); ok {
			msg = g.String()
		}
	}
	return &ResultError{
		StatusCode: r.StatusCode,
		URL:        strings.ReplaceAll(r.URL, "%2F", "/"),
		Message:    msg,
		Response:   r,
	}
}

// encodeQuery keeps the argument order; some firmwares parse positionally.
func encodeQuery(args Args) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = url.QueryEscape(arg.Key) + "=" + url.QueryEscape(argText(arg.Value))
	}
	return "?" + strings.Join(parts, "&")
}
