package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	i := Info{Version: "v0.3.0", GoVersion: "go1.24.1", Revision: "0123456789abcdef", Modified: true}
	assert.Equal(t, "psiverify v0.3.0 (go1.24.1) 0123456789ab+dirty", i.String())
	assert.Equal(t, "psiverify dev (go1.24.1)", Info{Version: "dev", GoVersion: "go1.24.1"}.String())
}

func TestRead(t *testing.T) {
	i := Read()
	assert.NotEmpty(t, i.Version)
	assert.NotEmpty(t, i.GoVersion)
}
