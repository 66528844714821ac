// Package mockcam is a fake Olympus camera. It serves canned XML replies over
// HTTP, tracks the operating mode and records every request it receives.
package mockcam

import (
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const XMLContentType = "text/xml"

// Reply is a canned answer to one command.
type Reply struct {
	Status      int
	ContentType string
	Body        string
}

// OK returns a 200 reply with an XML body.
func OK(body string) Reply {
	return Reply{Status: http.StatusOK, ContentType: XMLContentType, Body: body}
}

// Request is a request as received by the camera.
type Request struct {
	Method   string
	Command  string
	RawQuery string
	Host     string
	Header   http.Header
	Body     []byte
}

type Camera struct {
	mu       sync.Mutex
	replies  map[string]Reply
	requests []Request
	mode     string

	// RecOnly lists commands the camera refuses outside of rec mode.
	RecOnly map[string]bool
}

// New returns a camera answering the default command set.
func New() *Camera {
	c := &Camera{
		replies: map[string]Reply{},
		mode:    "play",
		RecOnly: map[string]bool{"get_camprop": true, "set_camprop": true},
	}
	for cmd, body := range defaultReplies {
		c.replies[cmd] = OK(body)
	}
	c.replies["switch_cammode"] = Reply{Status: http.StatusOK}
	c.replies["set_utctimediff"] = Reply{Status: http.StatusOK}
	c.replies["set_camprop"] = Reply{Status: http.StatusOK}
	return c
}

// SetReply replaces the answer to command.
func (c *Camera) SetReply(command string, reply Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies[command] = reply
}

// Requests returns every request received so far.
func (c *Camera) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// Commands returns the command names of all requests received so far.
func (c *Camera) Commands() []string {
	reqs := c.Requests()
	cmds := make([]string, len(reqs))
	for i, r := range reqs {
		cmds[i] = r.Command
	}
	return cmds
}

// Reset forgets recorded requests.
func (c *Camera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = nil
}

func (c *Camera) Mode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Camera) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	command := strings.TrimSuffix(path.Base(r.URL.Path), ".cgi")

	c.mu.Lock()
	c.requests = append(c.requests, Request{
		Method:   r.Method,
		Command:  command,
		RawQuery: r.URL.RawQuery,
		Host:     r.Host,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	reply, ok := c.replies[command]
	if ok && c.RecOnly[command] && c.mode != "rec" {
		reply = Reply{Status: 520, ContentType: XMLContentType, Body: wrongModeError}
	}
	if ok && command == "switch_cammode" && reply.Status == http.StatusOK {
		c.mode = r.URL.Query().Get("mode")
	}
	c.mu.Unlock()

	log.Debugf("mockcam: %s %s", r.Method, r.URL.String())
	if !ok {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "404 Not Found\r\n")
		return
	}
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, reply.Body)
}

const wrongModeError = `<?xml version="1.0"?>
<error><code>1002</code><msg>not in rec mode</msg></error>`

// CommandList is the get_commandlist reply of the default camera.
const CommandList = `<?xml version="1.0"?>
<oishare>
  <version>4.20</version>
  <support func="web"/>
  <support func="remote"/>
  <support func="gps"/>
  <cgi name="get_connectmode"><http_method type="get"/></cgi>
  <cgi name="switch_cammode">
    <http_method type="get">
      <cmd1 name="mode">
        <param1 name="rec">
          <cmd2 name="lvqty"><param2/></cmd2>
        </param1>
        <param1 name="play"/>
        <param1 name="shutter"/>
      </cmd1>
    </http_method>
  </cgi>
  <cgi name="get_caminfo"><http_method type="get"/></cgi>
  <cgi name="get_unusedcapacity"><http_method type="get"/></cgi>
  <cgi name="get_imglist"><http_method type="get"><cmd1 name="DIR"/></http_method></cgi>
  <cgi name="set_utctimediff">
    <http_method type="get">
      <cmd1 name="utctime"><param1><cmd2 name="diff"><param2/></cmd2></param1></cmd1>
    </http_method>
  </cgi>
  <cgi name="get_camprop">
    <http_method type="get">
      <cmd1 name="com">
        <param1 name="desc">
          <cmd2 name="propname"><param2 name="desclist"/><param2/></cmd2>
        </param1>
        <param1 name="get">
          <cmd2 name="propname"><param2/></cmd2>
        </param1>
      </cmd1>
    </http_method>
  </cgi>
  <cgi name="set_camprop">
    <http_method type="post">
      <cmd1 name="com">
        <param1 name="set"><cmd2 name="propname"><param2/></cmd2></param1>
      </cmd1>
    </http_method>
  </cgi>
  <cgi name="exec_takemisc">
    <http_method type="get">
      <cmd1 name="com"><cmd2 name="value"/></cmd1>
    </http_method>
  </cgi>
</oishare>`

var defaultReplies = map[string]string{
	"get_commandlist": CommandList,
	"get_connectmode": `<?xml version="1.0"?><connectmode>OPC</connectmode>`,
	"get_caminfo":     `<?xml version="1.0"?><caminfo><model>E-M10MarkII</model></caminfo>`,
	"get_unusedcapacity": `<?xml version="1.0"?>
<unusedcapacity><unused>15521792</unused></unusedcapacity>`,
	"get_imglist": `<?xml version="1.0"?><imglist><dir>/DCIM/100OLYMP</dir></imglist>`,
	"get_camprop": `<?xml version="1.0"?>
<desclist>
  <desc><propname>takemode</propname><attribute>getset</attribute><value>P</value><enum>iAuto P A S M ART</enum></desc>
  <desc><propname>isospeedvalue</propname><attribute>getset</attribute><value>Auto</value><enum>Auto Low 200 400 800 1600</enum></desc>
  <desc><propname>batteryLevel</propname><attribute>get</attribute><value>full</value><enum>empty low half full</enum></desc>
  <desc><propname>artfilter</propname><attribute>getset</attribute><value>POPART</value></desc>
</desclist>`,
	"exec_takemisc": `<?xml version="1.0"?><result>ok</result>`,
}
