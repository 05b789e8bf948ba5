package kitty

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	assert.Equal(t, "\x1b_Ga=d,d=A\x1b\\", string(Serialize(nil, DeleteAll...)))
	assert.Equal(t, "\x1b_Ga=T,f=100;raw\x1b\\", string(Serialize([]byte("raw"), Control{"a", "T"}, Control{"f", "100"})))
	assert.Equal(t, "\x1b_G\x1b\\", string(Serialize(nil)))
}

func TestSerializeString(t *testing.T) {
	assert.Equal(t, "\x1b_Ga=T;aGVsbG8=\x1b\\", string(SerializeString("hello", Control{"a", "T"})))
	assert.Equal(t, "\x1b_Ga=T\x1b\\", string(SerializeString("", Control{"a", "T"})))
}

func TestClear(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Clear(&buf))
	assert.Equal(t, "\x1b_Ga=d,d=A\x1b\\", buf.String())
}
