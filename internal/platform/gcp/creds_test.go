package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientOptions(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	assert.Empty(t, ClientOptions())
	assert.Len(t, ClientOptions("scope-a"), 1)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/etc/sa.json")
	assert.Len(t, ClientOptions(), 1)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
	assert.Len(t, ClientOptions("scope-a"), 2)
}

func TestNormalizeOCRText(t *testing.T) {
	assert.Equal(t, "Light reactions occur", normalizeOCRText("Light  reactions\n\n occur "))
}

func TestOCRConfigEnabled(t *testing.T) {
	assert.False(t, OCRConfig{ProjectID: "p"}.Enabled())
	assert.True(t, OCRConfig{ProjectID: "p", ProcessorID: "abc"}.Enabled())
}
