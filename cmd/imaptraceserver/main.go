package main

import (
	"crypto/tls"
	"flag"
	"io"
	"log"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emersion/go-imapcmd/imapserver"
	"github.com/emersion/go-imapcmd/imapserver/imaptraceserver"
)

// config is the optional YAML configuration file. Command-line flags take
// precedence.
type config struct {
	Listen         string            `yaml:"listen"`
	TLSCert        string            `yaml:"tls-cert"`
	TLSKey         string            `yaml:"tls-key"`
	Users          map[string]string `yaml:"users"`
	MaxLiteralSize int64             `yaml:"max-literal-size"`
	MaxLineLength  int               `yaml:"max-line-length"`
}

var (
	configPath     string
	listen         string
	tlsCert        string
	tlsKey         string
	username       string
	password       string
	maxLiteralSize int64
	debug          bool
	dump           bool
)

func loadConfig(path string) (*config, error) {
	var cfg config
	if path == "" {
		return &cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&listen, "listen", "localhost:143", "listening address")
	flag.StringVar(&tlsCert, "tls-cert", "", "TLS certificate")
	flag.StringVar(&tlsKey, "tls-key", "", "TLS key")
	flag.StringVar(&username, "username", "user", "Username")
	flag.StringVar(&password, "password", "user", "Password")
	flag.Int64Var(&maxLiteralSize, "max-literal-size", 0, "Maximum literal size in bytes, zero for unlimited")
	flag.BoolVar(&debug, "debug", false, "Print all commands and responses")
	flag.BoolVar(&dump, "dump", true, "Print decoded commands")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = listen
		case "tls-cert":
			cfg.TLSCert = tlsCert
		case "tls-key":
			cfg.TLSKey = tlsKey
		case "max-literal-size":
			cfg.MaxLiteralSize = maxLiteralSize
		}
	})
	if cfg.Listen == "" {
		cfg.Listen = listen
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	if cfg.TLSCert != "" || cfg.TLSKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			log.Fatalf("Failed to load TLS key pair: %v", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
		})
	}
	log.Printf("IMAP server listening on %v", ln.Addr())

	var dumpWriter io.Writer
	if dump {
		dumpWriter = os.Stdout
	}
	traceServer := imaptraceserver.New(dumpWriter)

	if username != "" || password != "" {
		traceServer.AddUser(imaptraceserver.NewUser(username, password))
	}
	for name, pass := range cfg.Users {
		traceServer.AddUser(imaptraceserver.NewUser(name, pass))
	}

	var debugWriter io.Writer
	if debug {
		debugWriter = os.Stdout
	}

	server := &imapserver.Server{
		NewSession: traceServer.NewSession,
		Options: &imapserver.Options{
			MaxLiteralSize: cfg.MaxLiteralSize,
			MaxLineLength:  cfg.MaxLineLength,
			DebugWriter:    debugWriter,
		},
	}
	if err := server.Serve(ln); err != nil {
		log.Fatalf("Serve() = %v", err)
	}
}
