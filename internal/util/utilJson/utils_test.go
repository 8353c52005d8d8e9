package utiljson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteLine(&buf, map[string]int{"port": 8080}))
	require.NoError(t, WriteLine(&buf, []string{}))

	assert.Equal(t, "{\"port\":8080}\n[]\n", buf.String())
}

func TestToJson_Error(t *testing.T) {
	_, err := ToJson(make(chan int))
	assert.Error(t, err)
}
