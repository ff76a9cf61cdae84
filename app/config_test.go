/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package app

import (
	"bytes"
	"io/ioutil"
	"testing"
	"time"

	"github.com/ortuman/gjab/log"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	var cfg1, cfg2 Config
	b, err := ioutil.ReadFile("./testdata/config_basic.yml")
	require.Nil(t, err)
	err = cfg1.FromBuffer(bytes.NewBuffer(b))
	require.Nil(t, err)
	require.Nil(t, cfg2.FromFile("./testdata/config_basic.yml"))
	require.Equal(t, cfg1, cfg2)

	require.Equal(t, log.DebugLevel, cfg1.Logger.Level)
	require.Equal(t, "alice@jabber.org", cfg1.Account.Username)
	require.Equal(t, "gjab", cfg1.Account.Resource)
	require.Equal(t, 10*time.Second, cfg1.Server.ConnectTimeout)
	require.Equal(t, 5*time.Minute, cfg1.Server.KeepAlive)
	require.Equal(t, uint32(3), cfg1.Server.MaxFailures)

	dc := cfg1.dialerConfig()
	require.Equal(t, 30*time.Second, dc.OpenTimeout)

	cc := cfg1.clientConfig()
	require.Equal(t, "conference.jabber.org", cc.Conference)
	require.Equal(t, "jabber.com", cc.DefaultServer)
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	require.Nil(t, cfg.FromBuffer(bytes.NewBufferString("account:\n  username: bob\n")))
	require.Equal(t, log.InfoLevel, cfg.Logger.Level)
	require.Equal(t, 5222, cfg.Server.Port)
	require.Equal(t, "conference.jabber.org", cfg.Server.Conference)
	require.Equal(t, "gjab", cfg.Account.Resource)
}

func TestBadConfigFile(t *testing.T) {
	var cfg Config
	require.NotNil(t, cfg.FromFile("./testdata/not_a_config.yml"))
	require.NotNil(t, cfg.FromFile("./testdata/config_no_username.yml"))
	require.NotNil(t, cfg.FromBuffer(bytes.NewBufferString("logger:\n  level: verbose\naccount:\n  username: bob\n")))
}
