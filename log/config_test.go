/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestLoggerConfig(t *testing.T) {
	c := Config{}
	err := yaml.Unmarshal([]byte("{level: debug}"), &c)
	require.Nil(t, err)
	require.Equal(t, DebugLevel, c.Level)

	err = yaml.Unmarshal([]byte("{level: info}"), &c)
	require.Nil(t, err)
	require.Equal(t, InfoLevel, c.Level)

	err = yaml.Unmarshal([]byte("{level: WARNING}"), &c)
	require.Nil(t, err)
	require.Equal(t, WarningLevel, c.Level)

	err = yaml.Unmarshal([]byte("{level: error}"), &c)
	require.Nil(t, err)
	require.Equal(t, ErrorLevel, c.Level)

	err = yaml.Unmarshal([]byte("{level: fatal}"), &c)
	require.Nil(t, err)
	require.Equal(t, FatalLevel, c.Level)

	err = yaml.Unmarshal([]byte("{level: invalid}"), &c)
	require.NotNil(t, err)

	c = Config{}
	err = yaml.Unmarshal([]byte("{log_path: gjab.log}"), &c)
	require.Nil(t, err)
	require.Equal(t, InfoLevel, c.Level)
	require.Equal(t, "gjab.log", c.LogPath)
}

func TestLoggerBadConfig(t *testing.T) {
	c := Config{}
	err := yaml.Unmarshal([]byte("level"), &c)
	require.NotNil(t, err)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DBG", DebugLevel.String())
	require.Equal(t, "INF", InfoLevel.String())
	require.Equal(t, "WRN", WarningLevel.String())
	require.Equal(t, "ERR", ErrorLevel.String())
	require.Equal(t, "FTL", FatalLevel.String())
}
