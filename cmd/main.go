package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognitedata/olympus-camctl/connectors/inputs"
	"github.com/cognitedata/olympus-camctl/drivers/camera/olympus"
	"github.com/cognitedata/olympus-camctl/internal"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var Version string

func main() {
	mainConfigPath := flag.String("config", "", "Path to a JSON or YAML configuration file")
	address := flag.String("address", "", "Camera base URL, overrides the configuration (e.g. http://127.0.0.1:8080/ for the mock service)")
	op := flag.String("op", "info", "Supported operations : 'version,gen_config,info,commands,props,query,send,set_clock,capacity'")
	format := flag.String("format", "yaml", "Output format : 'yaml' or 'json'")
	dataFile := flag.String("data", "", "File sent as post_data with op 'send'")

	flag.Parse()

	switch *op {
	case "version":
		fmt.Println(Version)
		return
	case "gen_config":
		path := *mainConfigPath
		if path == "" {
			path = filepath.Join(internal.GetBinaryDir(), "config.json")
		}
		if err := internal.WriteConfig(path, internal.DefaultConfig()); err != nil {
			fmt.Println("Failed to write config file. Err:", err.Error())
			os.Exit(1)
		}
		fmt.Println("Config file has been written to", path)
		return
	}

	config, err := internal.LoadConfig(*mainConfigPath)
	if err != nil {
		fmt.Println("Failed to load configuration. Err:", err.Error())
		os.Exit(1)
	}
	if *address != "" {
		config.Address = *address
	}
	logFile, err := internal.ConfigureLogger(config.LogDir, config.LogLevel)
	if err != nil {
		fmt.Println("Failed to configure logger. Err:", err.Error())
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(*op, config, flag.Args(), *dataFile, *format, os.Stdout); err != nil {
		if errors.Is(err, olympus.ErrUnreachable) {
			fmt.Fprintln(os.Stderr, "Camera not reachable. Make sure you are connected to the camera's Wi-Fi network.")
		}
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}

func run(op string, config internal.StaticConfig, args []string, dataFile, format string, out io.Writer) error {
	camera, err := inputs.NewIpCamera(config.Model, config.CameraConfig())
	if err != nil {
		return err
	}
	session, err := camera.Connect()
	if err != nil {
		return err
	}
	log.Infof("Connected: %s", session.Model())

	switch op {
	case "info":
		return printValue(out, format, struct {
			Model      string            `json:"model" yaml:"model"`
			Versions   map[string]string `json:"versions" yaml:"versions"`
			Supported  []string          `json:"supported" yaml:"supported"`
			CameraInfo interface{}       `json:"caminfo" yaml:"caminfo"`
		}{session.Model(), session.Versions(), session.SupportedFeatures(), session.CameraInfo()})
	case "commands":
		return printValue(out, format, session.Commands())
	case "props":
		props := map[string][]string{}
		for _, name := range session.Properties() {
			props[name], _ = session.PropertyValues(name)
		}
		return printValue(out, format, props)
	case "capacity":
		free, err := session.FreeCapacity()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, free)
		return nil
	case "set_clock":
		return session.SetClock()
	case "query", "send":
		if len(args) == 0 {
			return errors.Errorf("op %s needs a command name", op)
		}
		cmdArgs, err := parseArgs(args[1:])
		if err != nil {
			return err
		}
		if dataFile != "" {
			data, err := os.ReadFile(dataFile)
			if err != nil {
				return errors.Wrap(err, "read post data")
			}
			cmdArgs = append(cmdArgs, olympus.PostData(data))
		}
		if op == "send" {
			resp, err := session.SendCommand(args[0], cmdArgs...)
			if err != nil {
				return err
			}
			_, err = out.Write(resp.Body)
			return err
		}
		v, err := session.Query(args[0], cmdArgs...)
		if err != nil {
			return err
		}
		return printValue(out, format, v)
	default:
		return errors.Errorf("unsupported operation %q", op)
	}
}

// parseArgs turns key=value words into command arguments, keeping their order.
func parseArgs(words []string) (olympus.Args, error) {
	args := make(olympus.Args, 0, len(words))
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok {
			return nil, errors.Errorf("argument %q is not of the form key=value", w)
		}
		args = append(args, olympus.Param(key, value))
	}
	return args, nil
}

func printValue(out io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		body, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(body))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.Errorf("unsupported output format %q", format)
	}
}
