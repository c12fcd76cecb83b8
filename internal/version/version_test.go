package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCurrentVersion(t *testing.T) {
	assert.Equal(t, DevVersion, GetCurrentVersion("dev"))
	assert.Equal(t, DevVersion, GetCurrentVersion("demo"))
	assert.Equal(t, Version, GetCurrentVersion("prod"))
}

func TestIsVersionGreaterOrEqualThan(t *testing.T) {
	assert.True(t, IsVersionGreaterOrEqualThan("1.2.3", "1.2.3"))
	assert.True(t, IsVersionGreaterOrEqualThan("1.3.0", "1.2.9"))
	assert.False(t, IsVersionGreaterOrEqualThan("1.2.3", "1.3.0"))
}
