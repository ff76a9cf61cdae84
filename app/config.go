/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package app

import (
	"bytes"
	"io/ioutil"
	"time"

	"github.com/ortuman/gjab/client"
	"github.com/ortuman/gjab/log"
	"github.com/ortuman/gjab/transport"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type accountConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Resource string `yaml:"resource"`
}

type serverConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Conference     string        `yaml:"conference"`
	MaxStanzaSize  int           `yaml:"max_stanza_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	KeepAlive      time.Duration `yaml:"keep_alive"`
	MaxFailures    uint32        `yaml:"max_failures"`
	OpenTimeout    time.Duration `yaml:"open_timeout"`
}

// Config represents a global configuration.
type Config struct {
	Logger  log.Config    `yaml:"logger"`
	Account accountConfig `yaml:"account"`
	Server  serverConfig  `yaml:"server"`
}

// FromFile loads default global configuration from
// a specified file.
func (cfg *Config) FromFile(configFile string) error {
	b, err := ioutil.ReadFile(configFile)
	if err != nil {
		return err
	}
	return cfg.FromBuffer(bytes.NewBuffer(b))
}

// FromBuffer loads default global configuration from
// a specified byte buffer.
func (cfg *Config) FromBuffer(buf *bytes.Buffer) error {
	cfg.Logger.Level = log.InfoLevel
	if err := yaml.Unmarshal(buf.Bytes(), cfg); err != nil {
		return err
	}
	if len(cfg.Account.Username) == 0 {
		return errors.New("app.Config: account username must be set")
	}
	if len(cfg.Account.Resource) == 0 {
		cfg.Account.Resource = client.DefaultResource
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5222
	}
	if len(cfg.Server.Conference) == 0 {
		cfg.Server.Conference = client.DefaultConference
	}
	return nil
}

func (cfg *Config) clientConfig() *client.Config {
	return &client.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		DefaultServer: client.DefaultServer,
		Conference:    cfg.Server.Conference,
		MaxStanzaSize: cfg.Server.MaxStanzaSize,
	}
}

func (cfg *Config) dialerConfig() transport.DialerConfig {
	return transport.DialerConfig{
		ConnectTimeout: cfg.Server.ConnectTimeout,
		KeepAlive:      cfg.Server.KeepAlive,
		MaxFailures:    cfg.Server.MaxFailures,
		OpenTimeout:    cfg.Server.OpenTimeout,
	}
}
