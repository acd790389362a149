package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	OK    bool              `json:"ok"`
	Data  []int             `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

func TestCodecsAgree(t *testing.T) {
	v := payload{OK: true, Data: []int{1, 2, 3}, Attrs: map[string]string{"b": "2", "a": "1"}}
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(v)
			require.NoError(t, err)
			assert.JSONEq(t, `{"ok":true,"data":[1,2,3],"attrs":{"a":"1","b":"2"}}`, string(b))

			var buf bytes.Buffer
			require.NoError(t, c.Encode(&buf, v))
			assert.True(t, strings.HasSuffix(buf.String(), "\n"))

			var got payload
			require.NoError(t, c.Decode(&buf, &got))
			assert.Equal(t, v, got)

			err = c.Decode(strings.NewReader(`{"ok":true,"bogus":1}`), &got)
			assert.Error(t, err, "unknown fields are rejected")
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, Default.Name(), c.Name())

	_, err = ByName("xml")
	assert.Error(t, err)
}
