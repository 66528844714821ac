package main

import (
	"flag"
	"net/http"

	"github.com/cognitedata/olympus-camctl/pkg/mockcam"
	log "github.com/sirupsen/logrus"
)

// Serves a fake camera for manual testing:
//
//	go run ./test &
//	go run ./cmd -address http://127.0.0.1:8080/ -op props
func main() {
	listen := flag.String("listen", "127.0.0.1:8080", "Address the mock camera listens on")
	flag.Parse()

	log.SetLevel(log.DebugLevel)
	log.Infof("Mock camera listening on http://%s/", *listen)
	if err := http.ListenAndServe(*listen, mockcam.New()); err != nil {
		log.Fatal(err)
	}
}
