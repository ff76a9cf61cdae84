/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package version_test

import (
	"testing"

	"github.com/ortuman/gjab/version"
	"github.com/stretchr/testify/require"
)

func TestNewVersion(t *testing.T) {
	v1 := version.NewVersion(1, 9, 2)
	require.Equal(t, "v1.9.2", v1.String())
	require.Equal(t, "v0.1.0", version.ApplicationVersion.String())
}
