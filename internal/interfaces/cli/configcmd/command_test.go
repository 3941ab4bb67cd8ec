package configcmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteSettings_MasksSecrets(t *testing.T) {
	settings := map[string]interface{}{
		"database": map[string]interface{}{
			"driver":   "mysql",
			"password": "hunter2",
		},
		"provider": map[string]interface{}{
			"api_key":        "sk_live_1",
			"callback_token": "",
			"base_url":       "https://api.example.com",
		},
		"email": map[string]interface{}{
			"smtp_password": "mailpass",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeSettings(&buf, settings))

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "sk_live_1")
	assert.NotContains(t, out, "mailpass")

	var decoded map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, redacted, decoded["database"]["password"])
	assert.Equal(t, "mysql", decoded["database"]["driver"])
	assert.Equal(t, "", decoded["provider"]["callback_token"])
	assert.Equal(t, "https://api.example.com", decoded["provider"]["base_url"])
}

func TestRedact_DoesNotMutateInput(t *testing.T) {
	in := map[string]interface{}{"redis": map[string]interface{}{"password": "x"}}

	_ = redact(in)

	assert.Equal(t, "x", in["redis"].(map[string]interface{})["password"])
}
